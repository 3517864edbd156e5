package model

// CodeEntry is one row of the master code file.
type CodeEntry struct {
	Code        string
	Description string
}
