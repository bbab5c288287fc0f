package models

import "encoding/json"

// SenderAI is the sender tag carried by AI-originated envelopes.
const SenderAI = "AI"

// MessageEnvelope is the unit exchanged over the relay, in both directions.
// Structured fields are present only on AI-originated envelopes.
type MessageEnvelope struct {
	ID           string   `json:"id"`
	Text         string   `json:"text"`
	Sender       string   `json:"sender"`
	Timestamp    string   `json:"timestamp"` // "HH:MM"
	FileTree     FileTree `json:"fileTree,omitempty"`
	BuildCommand *Command `json:"buildCommand,omitempty"`
	StartCommand *Command `json:"startCommand,omitempty"`
}

// Command names a program and its argument list.
type Command struct {
	MainItem string   `json:"mainItem"`
	Commands []string `json:"commands"`
}

// FileTree maps a path segment to a file or a nested directory.
type FileTree map[string]*FileTreeNode

// FileBody holds the contents of a single generated file.
type FileBody struct {
	Contents string `json:"contents"`
}

// FileTreeNode is either a file leaf or a directory of child nodes.
// Exactly one of File and Dir is set.
type FileTreeNode struct {
	File *FileBody
	Dir  FileTree
}

// UnmarshalJSON resolves the node shape once: an object whose sole key is
// "file" with a contents body is a leaf, anything else is a directory.
func (n *FileTreeNode) UnmarshalJSON(data []byte) error {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return err
	}

	if raw, ok := probe["file"]; ok && len(probe) == 1 {
		var body FileBody
		if err := json.Unmarshal(raw, &body); err == nil {
			n.File = &body
			n.Dir = nil
			return nil
		}
	}

	var dir FileTree
	if err := json.Unmarshal(data, &dir); err != nil {
		return err
	}
	n.File = nil
	n.Dir = dir
	return nil
}

// MarshalJSON writes the wire shape back out unchanged.
func (n *FileTreeNode) MarshalJSON() ([]byte, error) {
	if n.File != nil {
		return json.Marshal(map[string]*FileBody{"file": n.File})
	}
	return json.Marshal(n.Dir)
}
