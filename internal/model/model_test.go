package model

import (
	"encoding/json"
	"testing"
)

func TestPageEmpty(t *testing.T) {
	t.Parallel()

	cases := []struct {
		p    Page[int]
		want bool
	}{
		{Page[int]{Pagination: Pagination{TotalPages: 1}}, true},
		{Page[int]{Pagination: Pagination{TotalPages: 0}}, true},
		{Page[int]{Pagination: Pagination{TotalPages: 3, CurrentPage: 3}}, true},
		{Page[int]{Items: []int{1}, Pagination: Pagination{TotalPages: 1}}, false},
	}
	for _, tc := range cases {
		if got := tc.p.Empty(); got != tc.want {
			t.Fatalf("Empty(%#v) = %v", tc.p, got)
		}
	}
}

func TestTaskListWireShape(t *testing.T) {
	t.Parallel()

	raw := `{"tasks":[{"id":3,"title":"T","status":"in_progress","priority":"high","due_date":"2026-02-01","created_by":1,
		"created_at":"2026-01-01T10:00:00Z","updated_at":"2026-01-01T10:00:00Z"}],
		"pagination":{"current_page":1,"total_pages":2,"total_count":11,"per_page":10}}`
	var tl TaskList
	if err := json.Unmarshal([]byte(raw), &tl); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(tl.Tasks) != 1 || tl.Tasks[0].Status != StatusInProgress || tl.Tasks[0].CreatedAt.IsZero() {
		t.Fatalf("unexpected tasks %#v", tl.Tasks)
	}
	if got := tl.Pagination.String(); got != "page 1 of 2 (11 total)" {
		t.Fatalf("unexpected pagination line %q", got)
	}
}

func TestUpdateRequestsOmitUnset(t *testing.T) {
	t.Parallel()

	b, _ := json.Marshal(UpdateMemberRequest{RoleName: Ptr(RoleAdmin)})
	if string(b) != `{"role_name":"admin"}` {
		t.Fatalf("unexpected body %s", b)
	}
	if !(User{Role: RoleAdmin}).IsAdmin() || (User{Role: RoleUser}).IsAdmin() {
		t.Fatalf("unexpected IsAdmin")
	}
}
