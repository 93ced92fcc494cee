package benchmark

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/firelite-db/firelite-go/bundle"
	"github.com/firelite-db/firelite-go/model"
	"github.com/firelite-db/firelite-go/remote"
)

const metadataRecord = `{"id":"bench-bundle","version":1,` +
	`"createTime":{"seconds":1577836800,"nanos":0},` +
	`"totalDocuments":500,"totalBytes":1048576}`

const namedQueryRecord = `{"name":"bench-query","readTime":"2020-01-01T00:00:00Z",` +
	`"bundledQuery":{"parent":"projects/bench/databases/(default)/documents",` +
	`"structuredQuery":{"from":[{"collectionId":"corpus"}],` +
	`"where":{"fieldFilter":{"field":{"fieldPath":"score"},"op":"GREATER_THAN","value":{"integerValue":"10"}}},` +
	`"orderBy":[{"field":{"fieldPath":"score"},"direction":"DESCENDING"}],"limit":25}}}`

func benchSerializer() *bundle.Serializer {
	return bundle.NewSerializer(remote.NewSerializer(model.NewDatabaseID("bench", "(default)")))
}

func flatDocumentRecord() string {
	var fields []string
	for i := 0; i < 50; i++ {
		fields = append(fields, fmt.Sprintf(`"field%02d":{"stringValue":"value-%02d"}`, i, i))
		fields = append(fields, fmt.Sprintf(`"count%02d":{"integerValue":"%d"}`, i, i))
	}
	return `{"name":"projects/bench/databases/(default)/documents/corpus/flat",` +
		`"updateTime":"2020-01-01T00:00:00Z","fields":{` + strings.Join(fields, ",") + `}}`
}

func deepDocumentRecord() string {
	inner := `{"stringValue":"leaf"}`
	for i := 0; i < 40; i++ {
		inner = `{"mapValue":{"fields":{"child":` + inner + `}}}`
	}
	return `{"name":"projects/bench/databases/(default)/documents/corpus/deep",` +
		`"updateTime":"2020-01-01T00:00:00Z","fields":{"root":` + inner + `}}`
}

func decodeCase(tm TimerManager, iters int, decode func(*bundle.JSONReader) error) error {
	tm.ResetTimer()
	for i := 0; i < iters; i++ {
		r := bundle.NewJSONReader()
		if err := decode(r); err != nil {
			return err
		}
		if err := r.Err(); err != nil {
			return errors.Wrap(err, "decode failed")
		}
	}
	tm.StopTimer()
	return nil
}

func BundleMetadataDecoding(ctx context.Context, tm TimerManager, iters int) error {
	s := benchSerializer()
	return decodeCase(tm, iters, func(r *bundle.JSONReader) error {
		md := s.DecodeBundleMetadata(r, metadataRecord)
		if r.OK() && md.ID != "bench-bundle" {
			return errors.New("unexpected metadata id")
		}
		return nil
	})
}

func BundleFlatDocumentDecoding(ctx context.Context, tm TimerManager, iters int) error {
	s := benchSerializer()
	record := flatDocumentRecord()
	return decodeCase(tm, iters, func(r *bundle.JSONReader) error {
		doc := s.DecodeDocument(r, record)
		if r.OK() && doc.Document.Fields.Len() != 100 {
			return errors.New("unexpected field count")
		}
		return nil
	})
}

func BundleDeepDocumentDecoding(ctx context.Context, tm TimerManager, iters int) error {
	s := benchSerializer()
	record := deepDocumentRecord()
	return decodeCase(tm, iters, func(r *bundle.JSONReader) error {
		doc := s.DecodeDocument(r, record)
		if r.OK() && doc.Document.Fields.Len() != 1 {
			return errors.New("unexpected field count")
		}
		return nil
	})
}

func BundleNamedQueryDecoding(ctx context.Context, tm TimerManager, iters int) error {
	s := benchSerializer()
	return decodeCase(tm, iters, func(r *bundle.JSONReader) error {
		nq := s.DecodeNamedQuery(r, namedQueryRecord)
		if r.OK() && nq.Name != "bench-query" {
			return errors.New("unexpected query name")
		}
		return nil
	})
}
