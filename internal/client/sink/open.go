package sink

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/cloudbox/internal/logging"
)

// Open builds the sink for t. The S3 client is only created for s3 targets.
func Open(ctx context.Context, t Target, cfg S3Config, logger logging.Logger) (Sink, error) {
	switch t.Scheme {
	case SchemeFile:
		return LocalSink{Dir: t.Dir}, nil
	case SchemeS3:
		c, err := NewS3Client(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return NewS3Sink(c, t.Bucket, logger), nil
	default:
		return nil, fmt.Errorf("unsupported download target %q", t.Scheme)
	}
}
