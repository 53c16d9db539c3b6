package store

import (
	"context"

	"github.com/google/uuid"
)

// maxFolderDepth caps the parent walk. The data source does not guarantee
// the folder graph is acyclic.
const maxFolderDepth = 64

// FolderLookup supplies folder rows for owner resolution.
type FolderLookup interface {
	FolderInfo(ctx context.Context, folderPK int64) (owner, parent, ftype int64, ok bool, err error)
}

// AccountLookup supplies account identifiers.
type AccountLookup interface {
	AccountIdentifier(ctx context.Context, accountPK int64) (string, error)
}

type folderRow struct {
	owner  int64
	parent int64
	ftype  int64
	ok     bool
}

// Resolver memoizes folder-owner and account-UUID resolution for the
// lifetime of one run. The caches grow monotonically and are never
// invalidated: the database is read-only for the duration of an export.
// Not safe for concurrent use.
type Resolver struct {
	folders  FolderLookup
	accounts AccountLookup

	folderCache map[int64]folderRow
	ownerCache  map[int64]int64
	uuidCache   map[int64]string
}

// NewResolver creates a Resolver over the given lookups.
func NewResolver(folders FolderLookup, accounts AccountLookup) *Resolver {
	return &Resolver{
		folders:     folders,
		accounts:    accounts,
		folderCache: make(map[int64]folderRow),
		ownerCache:  make(map[int64]int64),
		uuidCache:   make(map[int64]string),
	}
}

func (r *Resolver) folderInfo(ctx context.Context, folderPK int64) (folderRow, error) {
	if row, hit := r.folderCache[folderPK]; hit {
		return row, nil
	}
	owner, parent, ftype, ok, err := r.folders.FolderInfo(ctx, folderPK)
	if err != nil {
		return folderRow{}, err
	}
	row := folderRow{owner: owner, parent: parent, ftype: ftype, ok: ok}
	r.folderCache[folderPK] = row
	return row, nil
}

// FolderType returns the folder's type. known is false when the folder row
// does not exist.
func (r *Resolver) FolderType(ctx context.Context, folderPK int64) (ftype int64, known bool, err error) {
	row, err := r.folderInfo(ctx, folderPK)
	if err != nil {
		return 0, false, err
	}
	return row.ftype, row.ok, nil
}

// FolderOwner resolves the owning account of a folder by walking parent
// links until a folder with an owner is found. Zero means no owner could be
// resolved. The walk is depth-capped against cyclic parent references.
func (r *Resolver) FolderOwner(ctx context.Context, folderPK int64) (int64, error) {
	if folderPK == 0 {
		return 0, nil
	}
	if owner, hit := r.ownerCache[folderPK]; hit {
		return owner, nil
	}

	owner := int64(0)
	visited := make([]int64, 0, 4)
	pk := folderPK
	for depth := 0; depth < maxFolderDepth && pk != 0; depth++ {
		row, err := r.folderInfo(ctx, pk)
		if err != nil {
			return 0, err
		}
		if !row.ok {
			break
		}
		visited = append(visited, pk)
		if row.owner != 0 {
			owner = row.owner
			break
		}
		pk = row.parent
	}

	for _, pk := range visited {
		r.ownerCache[pk] = owner
	}
	r.ownerCache[folderPK] = owner
	return owner, nil
}

// AccountUUID returns the validated UUID string for an account. Empty means
// unknown; identifiers that are not well-formed UUIDs are rejected rather
// than used as path segments.
func (r *Resolver) AccountUUID(ctx context.Context, accountPK int64) (string, error) {
	if accountPK == 0 {
		return "", nil
	}
	if id, hit := r.uuidCache[accountPK]; hit {
		return id, nil
	}

	id, err := r.accounts.AccountIdentifier(ctx, accountPK)
	if err != nil {
		return "", err
	}
	if _, parseErr := uuid.Parse(id); parseErr != nil {
		id = ""
	}
	r.uuidCache[accountPK] = id
	return id, nil
}
