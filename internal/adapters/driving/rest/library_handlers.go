package rest

import (
	"errors"
	"io"
	"net/http"

	"github.com/retainhq/retain/internal/core/domain"
)

// defaultMaxUploadBytes leaves headroom over the document size cap for
// multipart framing.
const defaultMaxUploadBytes = domain.MaxDocumentSize + 1024*1024

type knowledgeBaseRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (s *Server) handleListKnowledgeBases(w http.ResponseWriter, r *http.Request) {
	kbs, err := s.library.ListKnowledgeBases(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	resp := make([]knowledgeBaseResponse, 0, len(kbs))
	for _, kb := range kbs {
		resp = append(resp, toKnowledgeBaseResponse(kb))
	}
	writeJSON(w, http.StatusOK, map[string]any{"knowledge_bases": resp})
}

func (s *Server) handleCreateKnowledgeBase(w http.ResponseWriter, r *http.Request) {
	var req knowledgeBaseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "malformed JSON body")
		return
	}

	kb, err := s.library.CreateKnowledgeBase(r.Context(), req.Name, req.Description)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toKnowledgeBaseResponse(*kb))
}

func (s *Server) handleUpdateKnowledgeBase(w http.ResponseWriter, r *http.Request) {
	var req knowledgeBaseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "malformed JSON body")
		return
	}

	kb, err := s.library.UpdateKnowledgeBase(r.Context(), r.PathValue("id"), req.Name, req.Description)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toKnowledgeBaseResponse(*kb))
}

func (s *Server) handleDeleteKnowledgeBase(w http.ResponseWriter, r *http.Request) {
	if err := s.library.DeleteKnowledgeBase(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "knowledge base deleted"})
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := s.library.ListDocuments(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	resp := make([]documentResponse, 0, len(docs))
	for _, doc := range docs {
		resp = append(resp, toDocumentResponse(doc))
	}
	writeJSON(w, http.StatusOK, map[string]any{"documents": resp})
}

func (s *Server) handleUploadDocument(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeErrorMessage(w, http.StatusRequestEntityTooLarge, "upload exceeds the size limit")
			return
		}
		writeErrorMessage(w, http.StatusBadRequest, `multipart field "file" is required`)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeErrorMessage(w, http.StatusRequestEntityTooLarge, "upload exceeds the size limit")
			return
		}
		writeErrorMessage(w, http.StatusBadRequest, "reading upload failed")
		return
	}

	doc, err := s.library.UploadDocument(r.Context(), r.PathValue("id"), header.Filename, data)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message":  "document uploaded",
		"document": toDocumentResponse(*doc),
	})
}

func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	if err := s.library.DeleteDocument(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "document deleted"})
}

func (s *Server) handleDocumentContent(w http.ResponseWriter, r *http.Request) {
	doc, err := s.library.GetDocument(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"id":       doc.ID,
		"filename": doc.Filename,
		"content":  doc.Content,
	})
}
