package formguard

import (
	"errors"
	"strings"
)

// MaxUploadBytes is the largest file the upload form accepts (20 MiB).
const MaxUploadBytes int64 = 20 * 1024 * 1024

// AllowedExtensions lists the accepted file name suffixes, lower case.
var AllowedExtensions = []string{".pdf", ".jpg", ".jpeg", ".png"}

// User-facing alert messages.
const (
	MsgTitleRequired   = "Por favor, preencha o título do documento."
	MsgFileRequired    = "Por favor, selecione um arquivo."
	MsgInvalidFormat   = "Formato de arquivo inválido. Use PDF, JPG ou PNG."
	MsgFileTooLarge    = "Arquivo muito grande. O tamanho máximo é 20MB."
	MsgCommentRequired = "Por favor, digite um comentário."
)

var (
	ErrTitleRequired       = errors.New("formguard: title required")
	ErrFileRequired        = errors.New("formguard: file required")
	ErrExtensionNotAllowed = errors.New("formguard: file extension not allowed")
	ErrFileTooLarge        = errors.New("formguard: file too large")
	ErrCommentRequired     = errors.New("formguard: comment required")
)

// Kind identifies which rule rejected the input.
type Kind int

const (
	KindTitleRequired Kind = iota + 1
	KindFileRequired
	KindExtensionNotAllowed
	KindFileTooLarge
	KindCommentRequired
)

func (k Kind) String() string {
	switch k {
	case KindTitleRequired:
		return "title_required"
	case KindFileRequired:
		return "file_required"
	case KindExtensionNotAllowed:
		return "extension_not_allowed"
	case KindFileTooLarge:
		return "file_too_large"
	case KindCommentRequired:
		return "comment_required"
	default:
		return "unknown"
	}
}

// Remedy is the adjustment applied to the offending field after the alert.
type Remedy int

const (
	// RemedyFocus moves input focus to the field so the user can correct it.
	RemedyFocus Remedy = iota + 1
	// RemedyClear resets the file selection entirely.
	RemedyClear
)

// Failure describes a rejected submission.
type Failure struct {
	Kind    Kind
	Message string
	Remedy  Remedy
	err     error
}

func (f *Failure) Error() string { return f.err.Error() }

func (f *Failure) Unwrap() error { return f.err }

var failures = map[Kind]Failure{
	KindTitleRequired:       {Kind: KindTitleRequired, Message: MsgTitleRequired, Remedy: RemedyFocus, err: ErrTitleRequired},
	KindFileRequired:        {Kind: KindFileRequired, Message: MsgFileRequired, Remedy: RemedyFocus, err: ErrFileRequired},
	KindExtensionNotAllowed: {Kind: KindExtensionNotAllowed, Message: MsgInvalidFormat, Remedy: RemedyClear, err: ErrExtensionNotAllowed},
	KindFileTooLarge:        {Kind: KindFileTooLarge, Message: MsgFileTooLarge, Remedy: RemedyClear, err: ErrFileTooLarge},
	KindCommentRequired:     {Kind: KindCommentRequired, Message: MsgCommentRequired, Remedy: RemedyFocus, err: ErrCommentRequired},
}

func fail(kind Kind) *Failure {
	f := failures[kind]
	return &f
}

// ValidateUpload runs the upload rules in order and returns the first
// failure, or nil when the submission may proceed. Only the first selected
// file is inspected.
func ValidateUpload(title string, files []FileInfo) *Failure {
	if strings.TrimSpace(title) == "" {
		return fail(KindTitleRequired)
	}
	if len(files) == 0 {
		return fail(KindFileRequired)
	}
	file := files[0]
	if !HasAllowedExtension(file.Name) {
		return fail(KindExtensionNotAllowed)
	}
	if file.Size > MaxUploadBytes {
		return fail(KindFileTooLarge)
	}
	return nil
}

// ValidateComment rejects comments that are blank after trimming.
func ValidateComment(content string) *Failure {
	if strings.TrimSpace(content) == "" {
		return fail(KindCommentRequired)
	}
	return nil
}

// HasAllowedExtension reports whether name ends with an allowed suffix,
// ignoring case.
func HasAllowedExtension(name string) bool {
	lower := strings.ToLower(name)
	for _, ext := range AllowedExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}
