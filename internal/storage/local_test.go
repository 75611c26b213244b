package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	ierr "github.com/flexprice/invoicegen/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type LocalStoreSuite struct {
	suite.Suite
	ctx   context.Context
	root  string
	store DocumentStore
}

func TestLocalStore(t *testing.T) {
	suite.Run(t, new(LocalStoreSuite))
}

func (s *LocalStoreSuite) SetupTest() {
	s.ctx = context.Background()
	s.root = filepath.Join(s.T().TempDir(), "docs")
	store, err := NewLocalStore(s.root)
	s.Require().NoError(err)
	s.store = store
}

func (s *LocalStoreSuite) TestPutGetRoundTrip() {
	key := InvoiceKey("inv_1")
	s.Require().NoError(s.store.Put(s.ctx, key, []byte("%PDF-1.3"), ContentTypePDF))

	data, err := s.store.Get(s.ctx, key)
	s.Require().NoError(err)
	s.Equal([]byte("%PDF-1.3"), data)

	_, err = os.Stat(filepath.Join(s.root, "invoices", "inv_1.pdf"))
	s.NoError(err)
}

func (s *LocalStoreSuite) TestPutReplaces() {
	key := InvoiceKey("inv_1")
	s.Require().NoError(s.store.Put(s.ctx, key, []byte("one"), ContentTypePDF))
	s.Require().NoError(s.store.Put(s.ctx, key, []byte("two"), ContentTypePDF))

	data, err := s.store.Get(s.ctx, key)
	s.Require().NoError(err)
	s.Equal([]byte("two"), data)

	entries, err := os.ReadDir(filepath.Join(s.root, "invoices"))
	s.Require().NoError(err)
	s.Len(entries, 1, "temp files must not be left behind")
}

func (s *LocalStoreSuite) TestGetMissing() {
	_, err := s.store.Get(s.ctx, InvoiceKey("missing"))
	s.Require().Error(err)
	s.True(ierr.IsNotFound(err))
}

func (s *LocalStoreSuite) TestExists() {
	key := NewLogoKey("png")
	ok, err := s.store.Exists(s.ctx, key)
	s.Require().NoError(err)
	s.False(ok)

	s.Require().NoError(s.store.Put(s.ctx, key, []byte{1, 2, 3}, ContentTypePNG))
	ok, err = s.store.Exists(s.ctx, key)
	s.Require().NoError(err)
	s.True(ok)
}

func (s *LocalStoreSuite) TestPresignUnsupported() {
	s.False(s.store.CanPresign())
	_, err := s.store.PresignedURL(s.ctx, InvoiceKey("inv_1"))
	s.Error(err)
}

func (s *LocalStoreSuite) TestRejectsEscapingKeys() {
	for _, key := range []string{"", "../etc/passwd", "/abs/path", "a/../../b", "."} {
		err := s.store.Put(s.ctx, key, []byte("x"), ContentTypePDF)
		s.Truef(ierr.IsValidation(err), "key %q", key)
	}
}

func TestNewLogoKey(t *testing.T) {
	a := NewLogoKey(".png")
	b := NewLogoKey("png")

	require.NotEqual(t, a, b)
	assert.Regexp(t, `^logos/logo-[0-9A-Z]{26}\.png$`, a)
	assert.NoError(t, validateKey(a))
}
