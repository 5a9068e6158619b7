package stream

import "github.com/syp1xd/food-ordering-app/models"

// LineKind distinguishes the two kinds of lines a session emits.
type LineKind int

const (
	LineData LineKind = iota + 1
	LineKeepAlive
)

const keepAliveText = ": keep-alive\n\n"

// Line is one SSE frame.
type Line struct {
	Kind  LineKind
	Event *models.StatusEvent
}

// DataLine wraps ev as a data frame.
func DataLine(ev *models.StatusEvent) Line {
	return Line{Kind: LineData, Event: ev}
}

// KeepAliveLine returns the idle keep-alive comment frame.
func KeepAliveLine() Line {
	return Line{Kind: LineKeepAlive}
}

// Bytes renders the line in SSE wire format.
func (l Line) Bytes() []byte {
	switch l.Kind {
	case LineData:
		out := make([]byte, 0, 64)
		out = append(out, "data: "...)
		out = append(out, l.Event.Payload()...)
		return append(out, "\n\n"...)
	case LineKeepAlive:
		return []byte(keepAliveText)
	default:
		return nil
	}
}

func (l Line) String() string {
	return string(l.Bytes())
}
