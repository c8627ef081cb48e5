package console_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/SFSorrow1968/iif-release/console"
)

func TestBannerPlainWhenNotATerminal(t *testing.T) {
	var buf bytes.Buffer
	c := console.New(&buf)

	c.Banner("Creating release zips")

	assert.Equal(t, "\n=== Creating release zips ===\n\n", buf.String())
}

func TestNotice(t *testing.T) {
	var buf bytes.Buffer
	c := console.New(&buf)

	c.Notice("tag %s already exists, skipping creation", "v2.3.0")

	assert.Equal(t, "tag v2.3.0 already exists, skipping creation\n", buf.String())
	assert.Same(t, &buf, c.Writer())
}

func TestCommand(t *testing.T) {
	var buf bytes.Buffer
	console.New(&buf).Command("git push origin v2.3.0")

	assert.Equal(t, "$ git push origin v2.3.0\n", buf.String())
}
