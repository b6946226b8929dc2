// Package framework contains the test-runner infrastructure that is not specific to any
// application under test.
//
// The general model is:
//
// 1. Tests are declared as Suites of named Test bodies. A Runner selects them with a Filter,
// runs them on a bounded pool of workers, reruns failed attempts up to a retry count, and
// reports every lifecycle event to an Observer.
//
// 2. Each test attempt gets its own Context, which is similar to Go's *testing.T: it implements
// require.TestingT so the assert and require packages can be used with it, and it accumulates
// errors, annotations and step records for the attempt.
//
// 3. Each Context owns a fixture Scope. Fixtures are built lazily on first use and released in
// reverse build order when the attempt ends, whatever the reason it ended.
//
// Application-specific code supplies the fixtures, page objects and test bodies.
package framework
