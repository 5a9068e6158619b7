package models

import "testing"

func FuzzParseStatusEvent(f *testing.F) {
	f.Add([]byte(`{"order_id": 42, "status": "preparing"}`))
	f.Add([]byte(`{"order_id":7,"status":"delivered"}`))
	f.Add([]byte(`{}`))
	f.Add([]byte(`null`))
	f.Add([]byte(`invalid`))

	f.Fuzz(func(t *testing.T, data []byte) {
		ev, err := ParseStatusEvent(data)
		if err != nil {
			return
		}
		// Anything we accept must survive a round trip through the wire format.
		again, err := ParseStatusEvent(ev.Payload())
		if err != nil {
			t.Fatalf("re-parse of %q failed: %v", ev.Payload(), err)
		}
		if *again != *ev {
			t.Fatalf("round trip mismatch: %+v != %+v", again, ev)
		}
	})
}
