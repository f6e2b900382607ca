package migrations

import "embed"

// Files contains the document store schema migrations, applied in file name order.
//
//go:embed *.sql
var Files embed.FS
