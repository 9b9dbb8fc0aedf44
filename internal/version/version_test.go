package version

import (
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFull(t *testing.T) {
	full := Full()

	assert.True(t, strings.HasPrefix(full, "v"+Core()+" ("))
	assert.True(t, strings.HasSuffix(full, runtime.GOOS+"/"+runtime.GOARCH))
}

func TestCommit(t *testing.T) {
	commit = "abc123"
	defer func() { commit = "" }()

	assert.Equal(t, "abc123", Commit())
	assert.Contains(t, Full(), "(abc123)")
}

func TestUserAgent(t *testing.T) {
	assert.Equal(t, "console/"+Core(), UserAgent())
}
