package migration

import (
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
)

var ErrMalformedContent = errors.New("malformed migration content")

type (
	// Command is an opaque database command, passed verbatim to the database.
	// Key order matters: the first key names the command.
	Command bson.D

	Content struct {
		Description string
		Commands    []Command
	}
)

// Parse decodes a command file written in MongoDB Extended JSON.
// It requires a string description and an array of documents as commands.
func Parse(raw []byte) (*Content, error) {
	var doc bson.D
	if err := bson.UnmarshalExtJSON(raw, false, &doc); err != nil {
		return nil, errors.Wrapf(ErrMalformedContent, "could not decode document: %s", err.Error())
	}

	var (
		description    interface{}
		commands       interface{}
		hasDescription bool
		hasCommands    bool
	)

	for _, e := range doc {
		switch e.Key {
		case "description":
			description, hasDescription = e.Value, true
		case "commands":
			commands, hasCommands = e.Value, true
		}
	}

	if !hasDescription {
		return nil, errors.Wrap(ErrMalformedContent, "missing field description")
	}

	desc, ok := description.(string)
	if !ok {
		return nil, errors.Wrap(ErrMalformedContent, "description must be a string")
	}

	if !hasCommands {
		return nil, errors.Wrap(ErrMalformedContent, "missing field commands")
	}

	items, ok := commands.(bson.A)
	if !ok {
		return nil, errors.Wrap(ErrMalformedContent, "commands must be an array")
	}

	result := &Content{Description: desc, Commands: make([]Command, 0, len(items))}
	for i := range items {
		cmd, ok := items[i].(bson.D)
		if !ok {
			return nil, errors.Wrapf(ErrMalformedContent, "command #%d must be an object", i)
		}

		result.Commands = append(result.Commands, Command(cmd))
	}

	return result, nil
}
