package moderation

import (
	"batepapo/errors"
	"bufio"
	"bytes"
	"embed"
	"io/fs"
	"strings"
)

// Dictionary carries the banned words and the languages they were loaded from.
type Dictionary struct {
	Words     []string
	Languages []string
}

// LoadDictionary reads every .txt file in the given directory of the embedded
// filesystem. Each file is one language (e.g. "pt.txt"), one word per line.
// Duplicate words across languages are kept once.
func LoadDictionary(f embed.FS, dir string) (*Dictionary, error) {
	entries, err := fs.ReadDir(f, dir)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	dict := &Dictionary{}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".txt") {
			continue
		}
		dict.Languages = append(dict.Languages, strings.TrimSuffix(entry.Name(), ".txt"))

		data, err := f.ReadFile(dir + "/" + entry.Name())
		if err != nil {
			return nil, err
		}

		// Scanner handles \n and \r\n line endings alike.
		scanner := bufio.NewScanner(bytes.NewReader(data))
		for scanner.Scan() {
			word := strings.TrimSpace(scanner.Text())
			if word == "" || strings.HasPrefix(word, "#") {
				continue
			}
			if _, ok := seen[word]; ok {
				continue
			}
			seen[word] = struct{}{}
			dict.Words = append(dict.Words, word)
		}
		if err := scanner.Err(); err != nil {
			return nil, err
		}
	}

	if len(dict.Words) == 0 {
		return nil, errors.ErrEmptyWords
	}
	return dict, nil
}
