// Package shared holds code used across the dashboard codebase that belongs
// to no single layer. Today that is test support only.
//
// # Test Utilities
//
// The testutil subpackage provides:
//
//   - Survey workbook and CSV fixtures written into t.TempDir()
//   - A buffered slog handler with log assertions
//
// Example usage:
//
//	func TestLoad(t *testing.T) {
//	    path := testutil.WriteSurveyWorkbook(t, testutil.SampleSurveyRows())
//	    logger, logs := testutil.NewTestLogger(t)
//	    table, err := dataprocessing.NewLoader(path, "", logger).Load(context.Background())
//	    ...
//	}
//
// Nothing here may import business logic packages; testutil only builds
// inputs and inspects log output.
package shared
