package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"

	platformconfig "audioclassify-server-go/internal/platform/config"
)

func TestBucketFor_DefaultTable(t *testing.T) {
	table := NewTable(platformconfig.DefaultBuckets())

	assert.Equal(t, "noise", table.BucketFor("Engine"))
	assert.Equal(t, "music", table.BucketFor("Singing"))
	assert.Equal(t, "speech", table.BucketFor("Speech"))
	assert.Equal(t, "silence", table.BucketFor("Silence"))
	assert.Equal(t, BucketOther, table.BucketFor("Dog barking"))
}

func TestNewTable_CanonicalOrder(t *testing.T) {
	table := NewTable(platformconfig.DefaultBuckets())
	assert.Equal(t, []string{"speech", "music", "silence", "noise", "other"}, table.Buckets())
}

func TestNewTable_ExtraBucketsBeforeOther(t *testing.T) {
	table := NewTable(map[string][]string{
		"speech":  {"Speech"},
		"animals": {"Dog", "Cat"},
	})

	buckets := table.Buckets()
	assert.Equal(t, "other", buckets[len(buckets)-1])
	assert.Equal(t, "animals", table.BucketFor("Dog"))
}
