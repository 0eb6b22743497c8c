package mail

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// ReadonlyScope is the only scope the fetcher needs; the mailbox is never
// modified.
const ReadonlyScope = gmail.GmailReadonlyScope

var invalidFilenameChars = regexp.MustCompile(`[<>:"/\\|?*]`)

// NewService creates a Gmail service from an authenticated http client.
func NewService(client *http.Client, opts ...option.ClientOption) (*gmail.Service, error) {
	if client != nil {
		opts = append([]option.ClientOption{option.WithHTTPClient(client)}, opts...)
	}
	svc, err := gmail.NewService(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve gmail client: %v", err)
	}
	return svc, nil
}

// Search lists the ids of messages matching the query, following page
// tokens until max messages have been collected or the result set ends.
func Search(svc *gmail.Service, query string, max int64) ([]*gmail.Message, error) {
	var msgs []*gmail.Message
	pageToken := ""
	for {
		call := svc.Users.Messages.List("me").Q(query)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}
		r, err := call.Do()
		if err != nil {
			return msgs, err
		}
		msgs = append(msgs, r.Messages...)
		if int64(len(msgs)) >= max {
			return msgs[:int(max)], nil
		}
		pageToken = r.NextPageToken
		if pageToken == "" {
			break
		}
	}
	return msgs, nil
}

// GetMessage retrieves the full message, including the MIME part tree.
func GetMessage(svc *gmail.Service, id string) (*gmail.Message, error) {
	return svc.Users.Messages.Get("me", id).Do()
}

// Subject returns the message's Subject header.
func Subject(msg *gmail.Message) string {
	if msg.Payload != nil {
		for _, h := range msg.Payload.Headers {
			if h.Name == "Subject" {
				return h.Value
			}
		}
	}
	return "No Subject"
}

// PDFParts walks the MIME part tree and collects every part that is a PDF
// attachment. A message without sub-parts may itself be the attachment.
func PDFParts(part *gmail.MessagePart) []*gmail.MessagePart {
	if part == nil {
		return nil
	}
	var found []*gmail.MessagePart
	if strings.HasSuffix(strings.ToLower(part.Filename), ".pdf") &&
		part.Body != nil && part.Body.AttachmentId != "" {
		found = append(found, part)
	}
	for _, p := range part.Parts {
		found = append(found, PDFParts(p)...)
	}
	return found
}

// DownloadAttachment fetches one attachment's bytes. Gmail returns the data
// websafe-base64 encoded, sometimes without padding.
func DownloadAttachment(svc *gmail.Service, msgID, attachmentID string) ([]byte, error) {
	att, err := svc.Users.Messages.Attachments.Get("me", msgID, attachmentID).Do()
	if err != nil {
		return nil, err
	}
	return base64.RawURLEncoding.DecodeString(strings.TrimRight(att.Data, "="))
}

// SaveAttachment downloads one attachment and writes it into folder under
// name. It returns the path of the written file.
func SaveAttachment(svc *gmail.Service, msgID string, part *gmail.MessagePart, folder, name string) (string, error) {
	data, err := DownloadAttachment(svc, msgID, part.Body.AttachmentId)
	if err != nil {
		return "", err
	}
	path := filepath.Join(folder, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", err
	}
	return path, nil
}

// SanitizeFilename replaces characters that are invalid in file names.
func SanitizeFilename(name string) string {
	return invalidFilenameChars.ReplaceAllString(name, "_")
}
