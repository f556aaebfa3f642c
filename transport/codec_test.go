package transport

import "testing"

func TestJSONCodecRoundTrip(t *testing.T) {
	c := jsonCodec{}

	msg := PartialClusterViewMsg{
		ThisNodeID: NodeIDMsg{UniqueID: 42, Generation: 7},
		Members: []MemberViewMsg{
			{ID: NodeIDMsg{UniqueID: 42, Generation: 7}, AdvertisedAddr: "localhost:9000"},
		},
	}

	data, err := c.Marshal(msg)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var out PartialClusterViewMsg
	if err := c.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if out.ThisNodeID != msg.ThisNodeID {
		t.Fatalf("expected %v, got %v", msg.ThisNodeID, out.ThisNodeID)
	}
	if len(out.Members) != 1 || out.Members[0].AdvertisedAddr != "localhost:9000" {
		t.Fatalf("unexpected members: %+v", out.Members)
	}
	if c.Name() != "json" {
		t.Fatalf("expected codec name json, got %s", c.Name())
	}
}
