package app

import "errors"

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrDocumentNotFound  = errors.New("document not found")
	ErrDocumentEmpty     = errors.New("document has no extractable text")
	ErrQuizNotFound      = errors.New("quiz not found")
	ErrFlashcardNotFound = errors.New("flashcard not found")
)
