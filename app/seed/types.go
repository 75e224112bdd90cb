package seed

// File is the root of a seed document
type File struct {
	Categories []CategorySeed `yaml:"categories"`
}

// CategorySeed is a top level category with its own feeds and optional subcategories
type CategorySeed struct {
	Name          string         `yaml:"name"`
	Feeds         []string       `yaml:"feeds"`
	Subcategories []CategorySeed `yaml:"subcategories"`
}

// Result counts what a seed run created
type Result struct {
	Categories int `json:"categories"`
	Feeds      int `json:"feeds"`
	Skipped    int `json:"skipped"`
}
