package store

import (
	"context"
	"testing"
)

type fakeFolderRow struct {
	owner  int64
	parent int64
	ftype  int64
}

type fakeLookup struct {
	folders  map[int64]fakeFolderRow
	accounts map[int64]string

	folderCalls  int
	accountCalls int
}

func (f *fakeLookup) FolderInfo(_ context.Context, pk int64) (int64, int64, int64, bool, error) {
	f.folderCalls++
	row, ok := f.folders[pk]
	return row.owner, row.parent, row.ftype, ok, nil
}

func (f *fakeLookup) AccountIdentifier(_ context.Context, pk int64) (string, error) {
	f.accountCalls++
	return f.accounts[pk], nil
}

func TestFolderOwnerDirect(t *testing.T) {
	fake := &fakeLookup{folders: map[int64]fakeFolderRow{5: {owner: 1}}}
	r := NewResolver(fake, fake)

	owner, err := r.FolderOwner(context.Background(), 5)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if owner != 1 {
		t.Errorf("owner: got %d", owner)
	}
}

func TestFolderOwnerViaParentChain(t *testing.T) {
	fake := &fakeLookup{folders: map[int64]fakeFolderRow{
		5: {parent: 6},
		6: {parent: 7},
		7: {owner: 42},
	}}
	r := NewResolver(fake, fake)
	ctx := context.Background()

	owner, err := r.FolderOwner(ctx, 5)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if owner != 42 {
		t.Errorf("owner: got %d", owner)
	}

	// Every folder on the walked chain is memoized.
	calls := fake.folderCalls
	for _, pk := range []int64{5, 6, 7} {
		if got, _ := r.FolderOwner(ctx, pk); got != 42 {
			t.Errorf("memoized owner for %d: got %d", pk, got)
		}
	}
	if fake.folderCalls != calls {
		t.Errorf("expected no further lookups, got %d extra", fake.folderCalls-calls)
	}
}

func TestFolderOwnerMissingFolder(t *testing.T) {
	fake := &fakeLookup{folders: map[int64]fakeFolderRow{}}
	r := NewResolver(fake, fake)

	owner, err := r.FolderOwner(context.Background(), 5)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if owner != 0 {
		t.Errorf("expected no owner, got %d", owner)
	}
}

func TestFolderOwnerCyclicParents(t *testing.T) {
	// The data source does not guarantee acyclic parents; the walk must
	// terminate and resolve to no owner.
	fake := &fakeLookup{folders: map[int64]fakeFolderRow{
		1: {parent: 2},
		2: {parent: 1},
	}}
	r := NewResolver(fake, fake)

	owner, err := r.FolderOwner(context.Background(), 1)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if owner != 0 {
		t.Errorf("expected no owner from cycle, got %d", owner)
	}
}

func TestFolderType(t *testing.T) {
	fake := &fakeLookup{folders: map[int64]fakeFolderRow{5: {ftype: 3}}}
	r := NewResolver(fake, fake)
	ctx := context.Background()

	ftype, known, err := r.FolderType(ctx, 5)
	if err != nil || !known || ftype != 3 {
		t.Errorf("ftype=%d known=%v err=%v", ftype, known, err)
	}

	_, known, err = r.FolderType(ctx, 99)
	if err != nil || known {
		t.Errorf("expected unknown folder, known=%v err=%v", known, err)
	}

	// Cached: no second lookup for the same folder.
	calls := fake.folderCalls
	r.FolderType(ctx, 5)
	if fake.folderCalls != calls {
		t.Error("expected cached folder row")
	}
}

func TestAccountUUIDValidation(t *testing.T) {
	fake := &fakeLookup{accounts: map[int64]string{
		1: "f47ac10b-58cc-4372-a567-0e02b2c3d479",
		2: "../../etc/passwd",
	}}
	r := NewResolver(fake, fake)
	ctx := context.Background()

	id, err := r.AccountUUID(ctx, 1)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if id != "f47ac10b-58cc-4372-a567-0e02b2c3d479" {
		t.Errorf("got %q", id)
	}

	// Malformed identifiers never become path segments.
	id, err = r.AccountUUID(ctx, 2)
	if err != nil || id != "" {
		t.Errorf("expected rejected identifier, got %q err=%v", id, err)
	}

	calls := fake.accountCalls
	r.AccountUUID(ctx, 1)
	r.AccountUUID(ctx, 2)
	if fake.accountCalls != calls {
		t.Error("expected cached account lookups")
	}

	if id, _ := r.AccountUUID(ctx, 0); id != "" {
		t.Errorf("expected empty for unknown owner, got %q", id)
	}
}
