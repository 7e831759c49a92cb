package storage

import "math"

const (
	DefaultPage  = 1
	DefaultLimit = 10
)

// Page is one page of a file listing. CurrentPage is the page number, or
// "ALL" when every file is returned.
type Page struct {
	TotalFiles  int        `json:"totalFiles"`
	CurrentPage any        `json:"currentPage"`
	TotalPages  int        `json:"totalPages"`
	Files       []FileInfo `json:"files"`
}

// Paginate slices files into pages of limit. A page below 1 returns
// everything as a single page. A limit below 1 falls back to DefaultLimit.
// Pages past the end are empty.
func Paginate(files []FileInfo, page, limit int) Page {
	if files == nil {
		files = []FileInfo{}
	}
	total := len(files)
	if page < 1 {
		return Page{TotalFiles: total, CurrentPage: "ALL", TotalPages: 1, Files: files}
	}
	if limit < 1 {
		limit = DefaultLimit
	}

	start := min((page-1)*limit, total)
	end := min(start+limit, total)
	return Page{
		TotalFiles:  total,
		CurrentPage: page,
		TotalPages:  int(math.Ceil(float64(total) / float64(limit))),
		Files:       files[start:end],
	}
}
