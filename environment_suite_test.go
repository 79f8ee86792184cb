package gojinja2

import (
	"testing"

	jujutesting "github.com/juju/testing"
	. "gopkg.in/check.v1"
)

// Hook up gocheck into the "go test" runner, the teacher's own
// pongo2_issues_test.go style for suite-based tests.
func TestEnvironmentSuite(t *testing.T) { TestingT(t) }

type EnvironmentSuite struct {
	jujutesting.CleanupSuite
	env *Environment
}

var _ = Suite(&EnvironmentSuite{})

func (s *EnvironmentSuite) SetUpTest(c *C) {
	s.CleanupSuite.SetUpTest(c)
	s.env = NewEnvironment(nil)
	s.env.RegisterLoader("", NewMemoryLoader(map[string]string{
		"greeting.html": "Hello, {{ name|default(\"stranger\") }}!",
	}))
}

func (s *EnvironmentSuite) TestGetTemplateCaches(c *C) {
	t1, err := s.env.GetTemplate("greeting.html")
	c.Assert(err, IsNil)
	t2, err := s.env.GetTemplate("greeting.html")
	c.Assert(err, IsNil)
	c.Check(t1, Equals, t2)
}

func (s *EnvironmentSuite) TestRenderWithDefaultFilter(c *C) {
	tpl, err := s.env.GetTemplate("greeting.html")
	c.Assert(err, IsNil)
	out, err := tpl.Execute(nil)
	c.Assert(err, IsNil)
	c.Check(out, Equals, "Hello, stranger!")

	out, err = tpl.Execute(Context{"name": "Ada"})
	c.Assert(err, IsNil)
	c.Check(out, Equals, "Hello, Ada!")
}

func (s *EnvironmentSuite) TestMissingTemplateErrors(c *C) {
	_, err := s.env.GetTemplate("does-not-exist.html")
	c.Assert(err, NotNil)
}
