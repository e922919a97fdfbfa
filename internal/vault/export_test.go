package vault

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/dmitrijs2005/securevault/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecords() map[string]Credential {
	now := time.Now().Truncate(time.Second)
	return map[string]Credential{
		"id-1": {ID: "id-1", ServiceName: "Example", Username: "alice", Password: "p@ss", CreatedAt: now, UpdatedAt: now},
		"id-2": {ID: "id-2", ServiceName: "Mail", Username: "bob", Password: "hunter2", Tags: []string{"personal"}, CreatedAt: now, UpdatedAt: now},
	}
}

func TestExportImport_RoundTrip(t *testing.T) {
	records := sampleRecords()

	blob, err := ExportRecords(records, "export-password")
	require.NoError(t, err)

	got, err := ImportRecords(blob, "export-password")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "alice", got["id-1"].Username)
	assert.Equal(t, []string{"personal"}, got["id-2"].Tags)
}

func TestImport_WrongPassword(t *testing.T) {
	blob, err := ExportRecords(sampleRecords(), "export-password")
	require.NoError(t, err)

	_, err = ImportRecords(blob, "other-password")
	assert.ErrorIs(t, err, common.ErrDenied)
}

func TestImport_MalformedBlob(t *testing.T) {
	tests := []struct {
		name string
		blob string
	}{
		{name: "not base64", blob: "%%%"},
		{name: "not json", blob: base64.StdEncoding.EncodeToString([]byte("garbage"))},
		{name: "missing sections", blob: base64.StdEncoding.EncodeToString([]byte(`{}`))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ImportRecords(tt.blob, "export-password")
			assert.ErrorIs(t, err, common.ErrCorrupt)
		})
	}
}

func TestExport_FreshSaltPerExport(t *testing.T) {
	records := sampleRecords()

	b1, err := ExportRecords(records, "export-password")
	require.NoError(t, err)
	b2, err := ExportRecords(records, "export-password")
	require.NoError(t, err)

	assert.NotEqual(t, b1, b2, "each export carries its own salt and nonce")
}
