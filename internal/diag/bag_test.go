package diag

import (
	"errors"
	"testing"
)

func TestBag_Limit(t *testing.T) {
	b := NewBag(2)
	if !b.Add(NewError(CommentSyntax, 1, "a")) {
		t.Fatal("first diagnostic rejected")
	}
	b.Add(NewError(CommentSyntax, 2, "b"))
	if b.Add(NewError(CommentSyntax, 3, "c")) {
		t.Errorf("expected third diagnostic to be rejected")
	}
	if b.Len() != 2 {
		t.Errorf("expected 2 diagnostics, got %d", b.Len())
	}

	unlimited := NewBag(0)
	for i := range 100 {
		unlimited.Add(NewError(CommentSyntax, i+1, "x"))
	}
	if unlimited.Len() != 100 {
		t.Errorf("expected 100 diagnostics in unlimited bag, got %d", unlimited.Len())
	}
}

func TestBag_SortKeepsEmissionOrder(t *testing.T) {
	b := NewBag(0)
	b.Add(NewError(CommentUnknownRevision, 5, "late"))
	b.Add(NewError(CommentSyntax, 2, "first"))
	b.Add(New(SevWarning, CommentSyntax, 5, "warn"))
	b.Add(NewError(CommentSyntax, 5, "second"))
	b.Sort()

	want := []string{"first", "late", "second", "warn"}
	for i, d := range b.Items() {
		if d.Message != want[i] {
			t.Errorf("item %d: expected %q, got %q", i, want[i], d.Message)
		}
	}
}

func TestBag_Errors(t *testing.T) {
	b := NewBag(0)
	if err := b.Errors(); err != nil {
		t.Fatalf("expected nil error for empty bag, got %v", err)
	}
	b.Add(NewError(CommentDuplicate, 7, "cannot specify `edition` twice"))
	err := b.Errors()

	var errs Errors
	if !errors.As(err, &errs) {
		t.Fatalf("expected diag.Errors, got %T", err)
	}
	if len(errs) != 1 || errs[0].Line != 7 {
		t.Errorf("unexpected errors: %v", errs)
	}
	if got := err.Error(); got != "line 7: REV3001: cannot specify `edition` twice" {
		t.Errorf("unexpected message %q", got)
	}

	// The returned value must not alias the bag.
	b.Add(NewError(CommentSyntax, 8, "more"))
	if len(errs) != 1 {
		t.Errorf("errors changed after bag mutation: %v", errs)
	}
}

func TestBag_HasErrors(t *testing.T) {
	b := NewBag(0)
	b.Add(New(SevWarning, CommentLegacyStyle, 1, "w"))
	if b.HasErrors() {
		t.Errorf("warnings alone must not count as errors")
	}
	b.Add(NewError(CommentSyntax, 2, "e"))
	if !b.HasErrors() {
		t.Errorf("expected HasErrors after adding an error")
	}
}

func TestBagReporter(t *testing.T) {
	b := NewBag(0)
	var r Reporter = BagReporter{Bag: b}
	r.Report(CommentSyntax, SevError, 3, "msg")
	NopReporter{}.Report(CommentSyntax, SevError, 4, "dropped")
	if b.Len() != 1 || b.Items()[0].Line != 3 {
		t.Errorf("unexpected bag contents: %v", b.Items())
	}
}

func TestDedupReporter(t *testing.T) {
	bag := NewBag(0)
	rep := NewDedupReporter(BagReporter{Bag: bag})
	rep.Report(CommentDuplicate, SevError, 3, "`edition` specified twice")
	rep.Report(CommentDuplicate, SevError, 3, "`edition` specified twice")
	rep.Report(CommentDuplicate, SevError, 4, "`edition` specified twice")
	rep.Report(CommentDuplicate, SevWarning, 3, "`edition` specified twice")
	if bag.Len() != 3 {
		t.Errorf("expected 3 distinct diagnostics, got %d: %v", bag.Len(), bag.Items())
	}
}
