package webhook

import "strings"

// S3Event is the decoded form of an S3 event notification payload,
// following the standard `{"Records": [...]}` envelope (spec §4.6).
type S3Event struct {
	Records []S3EventRecord
}

// S3EventRecord is a single record within an S3Event.
type S3EventRecord struct {
	EventName string
	Bucket    string
	ObjectKey string
	VersionID string
}

// rawS3Event and rawRecord mirror the on-the-wire S3 event notification
// JSON shape for unmarshaling before being flattened into S3Event.
type rawS3Event struct {
	Records []rawRecord `json:"Records"`
}

type rawRecord struct {
	EventName string `json:"eventName"`
	S3        struct {
		Bucket struct {
			Name string `json:"name"`
		} `json:"bucket"`
		Object struct {
			Key       string `json:"key"`
			VersionID string `json:"versionId"`
		} `json:"object"`
	} `json:"s3"`
}

func (raw rawS3Event) toEvent() S3Event {
	records := make([]S3EventRecord, 0, len(raw.Records))
	for _, r := range raw.Records {
		records = append(records, S3EventRecord{
			EventName: strings.TrimPrefix(r.EventName, "s3:"),
			Bucket:    r.S3.Bucket.Name,
			ObjectKey: r.S3.Object.Key,
			VersionID: r.S3.Object.VersionID,
		})
	}
	return S3Event{Records: records}
}
