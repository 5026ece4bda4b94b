package webhook

import "testing"

func TestBroadcastDeliversToAllSubscribers(t *testing.T) {
	b := NewBroadcaster()
	r1 := b.Subscribe()
	r2 := b.Subscribe()

	event := S3Event{Records: []S3EventRecord{{EventName: "ObjectRemoved:Delete", Bucket: "b", ObjectKey: "k"}}}
	b.Send(event)

	got1, lag1, ok1 := r1.Recv()
	got2, lag2, ok2 := r2.Recv()

	if !ok1 || !ok2 {
		t.Fatalf("expected both receivers to get the event")
	}
	if lag1 != 0 || lag2 != 0 {
		t.Fatalf("unexpected lag on first delivery")
	}
	if got1.Records[0].Bucket != "b" || got2.Records[0].Bucket != "b" {
		t.Fatalf("unexpected event contents")
	}
}

func TestBroadcastReportsLagOnOverflow(t *testing.T) {
	b := NewBroadcaster()
	r := b.Subscribe()

	for i := 0; i < broadcastBufferSize+5; i++ {
		b.Send(S3Event{Records: []S3EventRecord{{EventName: "ObjectRemoved:Delete", Bucket: "b"}}})
	}

	_, lagged, ok := r.Recv()
	if !ok {
		t.Fatalf("expected receiver still open")
	}
	if lagged == 0 {
		t.Fatalf("expected nonzero lag after overflow")
	}
}

func TestUnsubscribeClosesReceiver(t *testing.T) {
	b := NewBroadcaster()
	r := b.Subscribe()
	b.Unsubscribe(r)

	_, _, ok := r.Recv()
	if ok {
		t.Fatalf("expected receiver to be closed after unsubscribe")
	}
}

func TestFromRequestParsesS3Notification(t *testing.T) {
	body := []byte(`{"Records":[{"eventName":"s3:ObjectRemoved:Delete","s3":{"bucket":{"name":"b"},"object":{"key":"o","versionId":""}}}]}`)
	event, ok := fromRequest(body)
	if !ok {
		t.Fatalf("expected parse success")
	}
	if len(event.Records) != 1 || event.Records[0].Bucket != "b" || event.Records[0].ObjectKey != "o" {
		t.Fatalf("unexpected parsed event: %+v", event)
	}
	if event.Records[0].EventName != "ObjectRemoved:Delete" {
		t.Fatalf("expected s3: prefix to be stripped, got %q", event.Records[0].EventName)
	}
}

func TestFromRequestRejectsNonNotificationJSON(t *testing.T) {
	_, ok := fromRequest([]byte(`{"hello":"world"}`))
	if ok {
		t.Fatalf("expected non-notification JSON to be rejected")
	}
}

func TestFromRequestRejectsMalformedJSON(t *testing.T) {
	_, ok := fromRequest([]byte(`not json`))
	if ok {
		t.Fatalf("expected malformed JSON to be rejected")
	}
}
