// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/taibuivan/authgate/internal/platform/sec"
)

func TestBcryptHasher(t *testing.T) {
	hasher := sec.NewBcryptHasher(bcrypt.MinCost)

	hash, err := hasher.Hash("p")
	require.NoError(t, err)
	assert.NotEqual(t, "p", hash)

	assert.True(t, hasher.Verify(hash, "p"))
	assert.False(t, hasher.Verify(hash, "q"))
	assert.False(t, hasher.Verify("not-a-hash", "p"))
}

func TestBcryptHasher_TooLong(t *testing.T) {
	hasher := sec.NewBcryptHasher(bcrypt.MinCost)

	_, err := hasher.Hash(strings.Repeat("x", sec.MaxPasswordBytes+1))
	assert.Error(t, err)
}
