package command

import "strings"

// Tokenize splits a raw parameter string into arguments. Tokens are separated
// by spaces. A token that starts with ' or " runs until the same quote
// character, spaces included. The opening quote is dropped, and so is the
// token's last character when it is that quote, even if the quote closed
// earlier. Quotes anywhere else are ordinary characters and backslashes are
// literal. An unterminated quote runs to the end of the input.
//
// Macro placeholders are left untouched; expansion happens after tokenizing.
func Tokenize(raw string) []string {
	args := []string{}
	start, closed := -1, -1
	var quote byte

	emit := func(end int) {
		token := raw[start:end]
		if quote != 0 {
			token = strings.TrimSuffix(raw[start+1:end], string(quote))
		}
		args = append(args, token)
		start, closed, quote = -1, -1, 0
	}

	for i := 0; i < len(raw); i++ {
		c := raw[i]
		switch {
		case quote != 0 && closed == -1:
			if c == quote {
				closed = i
			}
		case c == ' ':
			if start > -1 {
				emit(i)
			}
		case start == -1:
			start = i
			if c == '\'' || c == '"' {
				quote = c
			}
		}
	}
	if start > -1 {
		emit(len(raw))
	}
	return args
}
