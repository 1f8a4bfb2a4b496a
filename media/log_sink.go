package media

import "pinhal/internal/logx"

// LogSink logs every posted event with a tagged, terse println. Useful
// for the demo command and for tests that want to observe event ordering
// without standing up a bus.
type LogSink struct {
	log *logx.Logger
}

func NewLogSink() *LogSink {
	return &LogSink{log: logx.New("media")}
}

func (s *LogSink) Post(eventType string, payload any) {
	s.log.Printf("%s %+v", eventType, payload)
}
