package testkit

import (
	"testing"

	perr "rabbithole/internal/platform/errors"
)

func TestMustPanic(t *testing.T) {
	t.Parallel()

	MustPanic(t, func() {
		panic("boom")
	})
}

func TestMustNotPanic(t *testing.T) {
	t.Parallel()

	MustNotPanic(t, func() {
		// no panic
	})
}

func TestMustNoErr(t *testing.T) {
	t.Parallel()

	MustNoErr(t, nil)
}

func TestMustErrCode(t *testing.T) {
	t.Parallel()

	MustErrCode(t, perr.NotFoundf("no such file"), perr.CodeNotFound)
	MustErrCode(t, perr.Wrapf(perr.Rulesf("bad pack"), perr.CodeRules, "load"), perr.CodeRules)
}

func TestMustContain(t *testing.T) {
	t.Parallel()

	haystack := "alpha beta gamma"
	MustContain(t, haystack, "beta")
}
