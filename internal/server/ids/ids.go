// Package ids allocates identifiers. Storage objects and metadata records
// use separate identifier spaces so the object layout can be re-keyed
// without touching record identity.
package ids

import (
	"fmt"
	"strings"

	"github.com/dmitrijs2005/studyvault/internal/common"
	"github.com/google/uuid"
	"github.com/rs/xid"
)

// Allocator hands out identifiers. Tests substitute deterministic ones.
type Allocator interface {
	FileID() string
	RecordID() string
	FolderID() string
}

// Random is the production Allocator: UUIDv4 for files and folders, xid for
// metadata records.
type Random struct{}

func (Random) FileID() string   { return uuid.NewString() }
func (Random) RecordID() string { return xid.New().String() }
func (Random) FolderID() string { return uuid.NewString() }

var keyNameReplacer = strings.NewReplacer("/", "_", "\\", "_")

// StorageKey derives the object key for one upload:
//
//	sessions/{sessionID}/{fileID}_{fileName}
//
// Path separators in fileName are flattened so the key stays inside the
// session prefix.
func StorageKey(sessionID, fileID, fileName string) string {
	return fmt.Sprintf("%s%s/%s_%s", common.SessionKeyPrefix, sessionID, fileID, keyNameReplacer.Replace(fileName))
}
