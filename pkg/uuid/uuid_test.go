// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package uuid_test

import (
	"testing"

	googleuuid "github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/authgate/pkg/uuid"
)

func TestNew_Version7(t *testing.T) {
	id := uuid.New()

	parsed, err := googleuuid.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, googleuuid.Version(7), parsed.Version())
	assert.True(t, uuid.Valid(id))
}

func TestNew_Sortable(t *testing.T) {
	first := uuid.New()
	second := uuid.New()
	assert.Less(t, first, second)
}

func TestValid(t *testing.T) {
	assert.False(t, uuid.Valid("not-a-uuid"))
	assert.False(t, uuid.Valid(""))
}
