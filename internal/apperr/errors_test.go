package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestKindOf_UnwrapsChain(t *testing.T) {
	base := NotFound("post not found")
	wrapped := fmt.Errorf("delete post: %w", base)

	if KindOf(wrapped) != KindNotFound {
		t.Fatalf("expected not_found, got %s", KindOf(wrapped))
	}
	if !Is(wrapped, KindNotFound) {
		t.Fatalf("expected Is to match")
	}
}

func TestKindOf_UntaggedIsInternal(t *testing.T) {
	if KindOf(errors.New("boom")) != KindInternal {
		t.Fatalf("expected internal")
	}
	if Is(nil, KindInternal) {
		t.Fatalf("nil error must not match any kind")
	}
}

func TestStatus_CoversTaxonomy(t *testing.T) {
	cases := map[Kind]int{
		KindUnauthorized:        http.StatusUnauthorized,
		KindValidation:          http.StatusBadRequest,
		KindModerationRejected:  http.StatusBadRequest,
		KindConflict:            http.StatusConflict,
		KindNotFound:            http.StatusNotFound,
		KindUpstreamUnavailable: http.StatusServiceUnavailable,
		KindRateLimited:         http.StatusTooManyRequests,
		KindInternal:            http.StatusInternalServerError,
	}
	for k, want := range cases {
		if got := Status(k); got != want {
			t.Fatalf("%s: expected %d, got %d", k, want, got)
		}
	}
}

func TestValidationAt_CarriesIndex(t *testing.T) {
	e := ValidationAt(3, "content at index 3 is empty")
	if e.Index != 3 {
		t.Fatalf("expected index 3, got %d", e.Index)
	}
	if Validation("x").Index != -1 {
		t.Fatalf("expected -1 index for plain validation error")
	}
}

func TestError_MessageIncludesCause(t *testing.T) {
	e := Internal("insert post", errors.New("connection reset"))
	if e.Error() != "insert post: connection reset" {
		t.Fatalf("unexpected message %q", e.Error())
	}
	if !errors.Is(e, e.Err) {
		t.Fatalf("expected cause to unwrap")
	}
}
