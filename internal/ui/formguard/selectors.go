package formguard

// Selectors maps each logical role the guard needs onto a CSS selector.
type Selectors struct {
	UploadForm     string
	TitleInput     string
	FileInput      string
	CommentForm    string
	CommentContent string
	AnyFileInput   string
}

// DefaultSelectors matches the markup rendered by the document portal.
func DefaultSelectors() Selectors {
	return Selectors{
		UploadForm:     `form[action*="upload"]`,
		TitleInput:     `input[name="title"]`,
		FileInput:      `input[name="file"]`,
		CommentForm:    `form[action*="comments"]`,
		CommentContent: `textarea[name="content"]`,
		AnyFileInput:   `input[type="file"]`,
	}
}

// withDefaults fills blank roles from DefaultSelectors.
func (s Selectors) withDefaults() Selectors {
	def := DefaultSelectors()
	if s.UploadForm == "" {
		s.UploadForm = def.UploadForm
	}
	if s.TitleInput == "" {
		s.TitleInput = def.TitleInput
	}
	if s.FileInput == "" {
		s.FileInput = def.FileInput
	}
	if s.CommentForm == "" {
		s.CommentForm = def.CommentForm
	}
	if s.CommentContent == "" {
		s.CommentContent = def.CommentContent
	}
	if s.AnyFileInput == "" {
		s.AnyFileInput = def.AnyFileInput
	}
	return s
}
