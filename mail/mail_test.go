package mail

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

func TestSubject(t *testing.T) {
	msg := &gmail.Message{Payload: &gmail.MessagePart{
		Headers: []*gmail.MessagePartHeader{
			{Name: "From", Value: "orders@example.com"},
			{Name: "Subject", Value: "Your order is on the way"},
		},
	}}
	if got := Subject(msg); got != "Your order is on the way" {
		t.Errorf("Subject must come from the header, got %q", got)
	}
	if got := Subject(&gmail.Message{}); got != "No Subject" {
		t.Errorf("missing header must fall back, got %q", got)
	}
}

func TestPDFPartsWalksNestedParts(t *testing.T) {
	payload := &gmail.MessagePart{
		Parts: []*gmail.MessagePart{
			{MimeType: "text/plain"},
			{
				MimeType: "multipart/mixed",
				Parts: []*gmail.MessagePart{
					{Filename: "invoice.PDF", Body: &gmail.MessagePartBody{AttachmentId: "a1"}},
					{Filename: "photo.jpg", Body: &gmail.MessagePartBody{AttachmentId: "a2"}},
				},
			},
			{Filename: "receipt.pdf", Body: &gmail.MessagePartBody{AttachmentId: "a3"}},
		},
	}
	parts := PDFParts(payload)
	if len(parts) != 2 {
		t.Fatalf("must find two PDF attachments, got %v", len(parts))
	}
	if parts[0].Body.AttachmentId != "a1" || parts[1].Body.AttachmentId != "a3" {
		t.Errorf("wrong attachments found: %v, %v", parts[0].Body.AttachmentId, parts[1].Body.AttachmentId)
	}
}

func TestPDFPartsPayloadItselfIsAttachment(t *testing.T) {
	payload := &gmail.MessagePart{
		Filename: "invoice.pdf",
		Body:     &gmail.MessagePartBody{AttachmentId: "a1"},
	}
	if parts := PDFParts(payload); len(parts) != 1 {
		t.Errorf("a part-less payload can be the attachment, got %v parts", len(parts))
	}
}

func TestPDFPartsIgnoresInlinePDFWithoutAttachmentID(t *testing.T) {
	payload := &gmail.MessagePart{
		Parts: []*gmail.MessagePart{
			{Filename: "inline.pdf", Body: &gmail.MessagePartBody{}},
		},
	}
	if parts := PDFParts(payload); len(parts) != 0 {
		t.Errorf("parts without an attachment id must be skipped, got %v", len(parts))
	}
}

func TestSanitizeFilename(t *testing.T) {
	got := SanitizeFilename(`order: "pad/thai" <final>?.pdf`)
	if strings.ContainsAny(got, `<>:"/\|?*`) {
		t.Errorf("invalid characters must be replaced, got %q", got)
	}
	if got != "order_ _pad_thai_ _final__.pdf" {
		t.Errorf("unexpected sanitized name %q", got)
	}
}

func fakeGmail(t *testing.T, handler http.HandlerFunc) *gmail.Service {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	svc, err := NewService(nil, option.WithoutAuthentication(), option.WithEndpoint(srv.URL))
	if err != nil {
		t.Fatal(err)
	}
	return svc
}

func TestSearchFollowsPagesUpToMax(t *testing.T) {
	svc := fakeGmail(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/users/me/messages") {
			t.Errorf("unexpected path %v", r.URL.Path)
		}
		if q := r.URL.Query().Get("q"); q != "subject:invoice" {
			t.Errorf("query must be forwarded, got %q", q)
		}
		resp := &gmail.ListMessagesResponse{}
		if r.URL.Query().Get("pageToken") == "" {
			resp.Messages = []*gmail.Message{{Id: "m1"}, {Id: "m2"}}
			resp.NextPageToken = "page2"
		} else {
			resp.Messages = []*gmail.Message{{Id: "m3"}, {Id: "m4"}}
		}
		json.NewEncoder(w).Encode(resp)
	})

	msgs, err := Search(svc, "subject:invoice", 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 3 {
		t.Fatalf("max must cap the result, got %v messages", len(msgs))
	}
	if msgs[0].Id != "m1" || msgs[2].Id != "m3" {
		t.Errorf("messages must keep listing order, got %v %v", msgs[0].Id, msgs[2].Id)
	}
}

func TestDownloadAttachmentDecodesWebsafeBase64(t *testing.T) {
	raw := []byte("%PDF-1.4 fake content")
	svc := fakeGmail(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "/messages/m1/attachments/a1") {
			t.Errorf("unexpected path %v", r.URL.Path)
		}
		// Unpadded websafe encoding, as Gmail returns it.
		fmt.Fprintf(w, `{"data":%q,"size":%d}`, base64.RawURLEncoding.EncodeToString(raw), len(raw))
	})

	data, err := DownloadAttachment(svc, "m1", "a1")
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != string(raw) {
		t.Errorf("decoded bytes differ: %q", data)
	}
}
