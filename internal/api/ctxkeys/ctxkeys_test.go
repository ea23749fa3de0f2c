package ctxkeys

import (
	"context"
	"testing"
)

func TestWithValue_SetsAndGetsTypedKey(t *testing.T) {
	t.Parallel()

	ctx := WithValue(context.Background(), WorkspaceID, "ws-999")
	got, ok := ctx.Value(WorkspaceID).(string)
	if !ok {
		t.Fatalf("expected string value")
	}
	if got != "ws-999" {
		t.Fatalf("expected ws-999, got %q", got)
	}
}

func TestWithValue_TypedKeyDoesNotCollideWithStringKey(t *testing.T) {
	t.Parallel()

	ctx := WithValue(context.Background(), UserID, "user-1")
	if v := ctx.Value("user_id"); v != nil {
		t.Fatalf("plain string key should not resolve typed key value, got %v", v)
	}
}
