package diag

// Multi forwards log lines to every bridge. Abort is logged at LevelFatal on
// the secondary bridges, then handed to the primary.
type Multi struct {
	primary Bridge
	others  []Bridge
}

func NewMulti(primary Bridge, others ...Bridge) *Multi {
	return &Multi{primary: primary, others: others}
}

func (m *Multi) Log(level Level, msg string) {
	m.primary.Log(level, msg)
	for _, b := range m.others {
		b.Log(level, msg)
	}
}

func (m *Multi) Abort(code Code, msg string) {
	for _, b := range m.others {
		b.Log(LevelFatal, code.String()+": "+msg)
	}
	Fatal(m.primary, code, msg)
}
