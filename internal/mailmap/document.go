package mailmap

import (
	"errors"
	"fmt"
	"strings"
)

const (
	oldEmailsRequiredMessageConstant   = "at least one old email is required"
	replacementRequiredMessageConstant = "a new name or new email is required"
	namedEntryTemplateConstant         = "%s <%s> <%s>"
	emailOnlyEntryTemplateConstant     = "<%s> <%s>"
	entrySeparatorConstant             = "\n"
)

// ErrOldEmailsRequired indicates an identity specification without any old emails.
var ErrOldEmailsRequired = errors.New(oldEmailsRequiredMessageConstant)

// ErrReplacementRequired indicates an identity specification without a replacement name or email.
var ErrReplacementRequired = errors.New(replacementRequiredMessageConstant)

// IdentitySpec describes a validated author identity change.
//
// The specification holds the historical emails to match, in the order they
// were supplied, together with the replacement name and email. At least one
// of the replacement fields is always present.
type IdentitySpec struct {
	oldEmails []string
	newName   string
	newEmail  string
}

// NewIdentitySpec validates the supplied identity change and constructs an immutable specification.
//
// Old emails are trimmed and deduplicated while preserving their original
// order. Blank old emails are discarded before validation.
func NewIdentitySpec(oldEmails []string, newName string, newEmail string) (IdentitySpec, error) {
	normalizedOldEmails := normalizeOldEmails(oldEmails)
	if len(normalizedOldEmails) == 0 {
		return IdentitySpec{}, ErrOldEmailsRequired
	}

	trimmedNewName := strings.TrimSpace(newName)
	trimmedNewEmail := strings.TrimSpace(newEmail)
	if len(trimmedNewName) == 0 && len(trimmedNewEmail) == 0 {
		return IdentitySpec{}, ErrReplacementRequired
	}

	return IdentitySpec{
		oldEmails: normalizedOldEmails,
		newName:   trimmedNewName,
		newEmail:  trimmedNewEmail,
	}, nil
}

// OldEmails returns the historical emails in their original order.
func (specification IdentitySpec) OldEmails() []string {
	duplicatedEmails := make([]string, len(specification.oldEmails))
	copy(duplicatedEmails, specification.oldEmails)
	return duplicatedEmails
}

// NewName returns the replacement author name, or an empty string when only the email changes.
func (specification IdentitySpec) NewName() string {
	return specification.newName
}

// NewEmail returns the replacement author email, or an empty string when only the name changes.
func (specification IdentitySpec) NewEmail() string {
	return specification.newEmail
}

func normalizeOldEmails(oldEmails []string) []string {
	seenEmails := map[string]struct{}{}
	normalizedEmails := []string{}
	for _, oldEmail := range oldEmails {
		trimmedEmail := strings.TrimSpace(oldEmail)
		if len(trimmedEmail) == 0 {
			continue
		}
		if _, alreadySeen := seenEmails[trimmedEmail]; alreadySeen {
			continue
		}
		seenEmails[trimmedEmail] = struct{}{}
		normalizedEmails = append(normalizedEmails, trimmedEmail)
	}
	return normalizedEmails
}

// Entry represents a single mailmap mapping line.
type Entry struct {
	NewName  string
	NewEmail string
	OldEmail string
}

// Render produces the mailmap line for the entry.
//
// When both replacement fields are present the line maps the old email to the
// new name and email. When only the email changes the name is omitted. When
// only the name changes the old email maps to itself so that commits keep
// their address while adopting the new display name.
func (entry Entry) Render() string {
	if len(entry.NewName) > 0 && len(entry.NewEmail) > 0 {
		return fmt.Sprintf(namedEntryTemplateConstant, entry.NewName, entry.NewEmail, entry.OldEmail)
	}
	if len(entry.NewEmail) > 0 {
		return fmt.Sprintf(emailOnlyEntryTemplateConstant, entry.NewEmail, entry.OldEmail)
	}
	return fmt.Sprintf(namedEntryTemplateConstant, entry.NewName, entry.OldEmail, entry.OldEmail)
}

// Document is an ordered collection of mailmap entries.
type Document struct {
	entries []Entry
}

// BuildDocument derives a mailmap document from the identity specification,
// emitting one entry per old email in the order the emails were supplied.
func BuildDocument(specification IdentitySpec) Document {
	entries := make([]Entry, 0, len(specification.oldEmails))
	for _, oldEmail := range specification.oldEmails {
		entries = append(entries, Entry{
			NewName:  specification.newName,
			NewEmail: specification.newEmail,
			OldEmail: oldEmail,
		})
	}
	return Document{entries: entries}
}

// Entries returns the document entries in order.
func (document Document) Entries() []Entry {
	duplicatedEntries := make([]Entry, len(document.entries))
	copy(duplicatedEntries, document.entries)
	return duplicatedEntries
}

// Render produces the full mailmap file contents including a trailing newline.
func (document Document) Render() string {
	renderedEntries := make([]string, 0, len(document.entries))
	for _, entry := range document.entries {
		renderedEntries = append(renderedEntries, entry.Render())
	}
	return strings.Join(renderedEntries, entrySeparatorConstant) + entrySeparatorConstant
}
