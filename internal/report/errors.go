package report

import "fmt"

// SourceMissingError reports a missing year workbook. Fatal to the report
// run.
type SourceMissingError struct {
	Path string
}

func (e *SourceMissingError) Error() string {
	return fmt.Sprintf("source file missing: %s", e.Path)
}

// EmptySheetError reports a resolved sheet with no data rows. A silently
// empty report would be worse than a failure.
type EmptySheetError struct {
	File  string
	Sheet string
}

func (e *EmptySheetError) Error() string {
	return fmt.Sprintf("sheet %q is empty in %s", e.Sheet, e.File)
}
