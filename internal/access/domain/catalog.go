package domain

// Catalog is a seed set of subjects and resources loaded at startup.
type Catalog struct {
	Subjects  []CreateSubjectInput
	Resources []RegisterResourceInput
}

// SeedReport counts what a catalog seed created or skipped.
type SeedReport struct {
	SubjectsCreated  int
	SubjectsSkipped  int
	ResourcesCreated int
	ResourcesSkipped int
	Warnings         []Warning
}
