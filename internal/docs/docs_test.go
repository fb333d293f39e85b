package docs

import (
	"strings"
	"testing"
)

func TestTopicsAreSortedAndReadable(t *testing.T) {
	t.Parallel()

	topics := Topics()
	if len(topics) == 0 {
		t.Fatalf("expected embedded topics")
	}
	for i, topic := range topics {
		if i > 0 && topics[i-1] > topic {
			t.Fatalf("topics not sorted: %v", topics)
		}
		body, ok := Get(topic)
		if !ok || !strings.HasPrefix(body, "# ") {
			t.Fatalf("topic %q: expected a markdown heading", topic)
		}
	}
}

func TestGet(t *testing.T) {
	t.Parallel()

	if _, ok := Get(" KEYS "); !ok {
		t.Fatalf("expected case-insensitive lookup")
	}
	for _, bad := range []string{"", "nope", "../docs", "content/keys"} {
		if _, ok := Get(bad); ok {
			t.Fatalf("expected %q to be unknown", bad)
		}
	}
}
