package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/authlog-api/pkg/config"
)

func TestRequirePersistentStore(t *testing.T) {
	assert.NoError(t, requirePersistentStore(config.StoreDriverPostgres))

	err := requirePersistentStore(config.StoreDriverMemory)
	assert.ErrorContains(t, err, "no persiste")
}
