package util

import (
	"fmt"
	"os"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type testError struct {
	suite.Suite
}

func (t *testError) TestIs() {
	e0 := NewError("showme")
	t.Equal("showme", e0.Error())

	t.True(errors.Is(e0, e0))
	t.False(errors.Is(e0, NewError("showme")))
	t.True(errors.Is(e0, e0.Errorf("findme")))
	t.True(errors.Is(e0.Call(), e0))
}

func (t *testError) TestWrap() {
	e0 := NewError("showme")

	pe := &os.PathError{Err: errors.Errorf("path error")}
	e1 := e0.Wrap(pe)

	t.True(errors.Is(e1, e0))
	t.True(errors.Is(e1, pe))

	var npe *os.PathError
	t.True(errors.As(e1, &npe))

	var ne *NError
	t.True(errors.As(e1, &ne))
}

func (t *testError) TestCategoryWrap() {
	category := NewError("category")
	specific := NewError("specific")
	other := NewError("other")

	err := category.Wrap(specific.Call())

	t.True(errors.Is(err, category))
	t.True(errors.Is(err, specific))
	t.False(errors.Is(err, other))
	t.Equal("category; specific", err.Error())
}

func (t *testError) TestErrorf() {
	e0 := NewError("showme")
	e1 := e0.Errorf("id=%d", 3)

	t.Equal("showme; id=3", e1.Error())
	t.Equal("showme; id=3", fmt.Sprintf("%s", e1))
	t.Contains(fmt.Sprintf("%+v", e1), "error_test.go")
	t.NotEmpty(e1.StackTrace())
}

func TestError(t *testing.T) {
	suite.Run(t, new(testError))
}
