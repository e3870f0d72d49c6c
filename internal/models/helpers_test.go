package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

func TestRecordIDString(t *testing.T) {
	id := surrealmodels.RecordID{Table: "website_analysis", ID: "wa123"}

	s, err := RecordIDString(id)
	require.NoError(t, err)
	assert.Equal(t, "wa123", s)
}

func TestRecordIDStringNonString(t *testing.T) {
	id := surrealmodels.RecordID{Table: "website_analysis", ID: 42}

	_, err := RecordIDString(id)
	assert.ErrorContains(t, err, "unexpected ID type")
}
