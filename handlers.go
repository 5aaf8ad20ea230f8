package campusvoice

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/julienschmidt/httprouter"
)

// respondJSON writes v as the JSON response body with the given status.
func (s *Server) respondJSON(res http.ResponseWriter, status int, v interface{}) {
	res.Header().Set("Content-Type", "application/json")
	res.WriteHeader(status)
	if err := json.NewEncoder(res).Encode(v); err != nil {
		s.Logger.Error().Err(err).Msg("Failed to encode response")
	}
}

// respondError lets ErrorResponder errors write their own status and falls
// back to a generic 500 for everything else.
func (s *Server) respondError(res http.ResponseWriter, req *http.Request, err error) {
	var responder ErrorResponder
	if errors.As(err, &responder) && responder.RespondError(res, req) {
		return
	}

	jsonError(res, http.StatusInternalServerError, "Internal server error")
}

// HandleFeed handles requests for the full feed: every request joined with
// its vote counts, the caller's own vote, and its comments. Optional query
// parameters narrow by category and choose the sort; the default order is
// most recent first.
func (s *Server) HandleFeed() httprouter.Handle {
	return func(res http.ResponseWriter, req *http.Request, _ httprouter.Params) {
		clientKey := ctxClientKey(req.Context())

		feed, err := s.store.ListFeed(clientKey)
		if err != nil {
			s.Logger.Error().Err(err).Msg("Failed to list feed")
			jsonError(res, http.StatusInternalServerError, "Failed to list requests")
			return
		}

		for _, p := range feed {
			p.ContentHTML = renderContent(p.Content)
		}

		feed = FilterByCategory(feed, req.URL.Query().Get("category"))

		sortKey := SortKey(req.URL.Query().Get("sort"))
		if sortKey == "" {
			sortKey = SortRecent
		}
		SortFeed(feed, sortKey)

		s.respondJSON(res, http.StatusOK, map[string]interface{}{
			"requests": feed,
		})
	}
}

// createRequestInput carries the values common to both encodings of the
// create endpoint.
type createRequestInput struct {
	Content   string `json:"content"`
	Category  string `json:"category"`
	ClientKey string `json:"client_key"`
}

// HandleCreateRequest handles request submission. Multipart bodies may
// attach a photo, which is uploaded to blob storage first; if that upload
// fails, nothing is persisted. JSON bodies carry text only.
func (s *Server) HandleCreateRequest() httprouter.Handle {
	return func(res http.ResponseWriter, req *http.Request, _ httprouter.Params) {
		var input createRequestInput

		multipart := strings.HasPrefix(req.Header.Get("Content-Type"), "multipart/form-data")
		if multipart {
			if err := req.ParseMultipartForm(s.config.MaxPhotoBytes); err != nil {
				s.Logger.Warn().Err(err).Msg("Failed to parse multipart form")
				s.respondError(res, req, BadRequest(err))
				return
			}

			input.Content = req.FormValue("content")
			input.Category = req.FormValue("category")
			input.ClientKey = req.FormValue("client_key")
		} else {
			if err := json.NewDecoder(req.Body).Decode(&input); err != nil {
				s.respondError(res, req, BadRequest(err))
				return
			}
		}

		input.Content = strings.TrimSpace(input.Content)
		input.ClientKey = strings.TrimSpace(input.ClientKey)

		fields := []string{}
		if input.Content == "" {
			fields = append(fields, "content")
		}
		if input.ClientKey == "" {
			fields = append(fields, "client_key")
		}
		if len(fields) > 0 {
			s.respondError(res, req, UnprocessableEntity(fields...))
			return
		}

		// only after validation, so a rejected create never leaves a blob
		var photoPath string
		if multipart {
			url, err := s.uploadPhoto(req)
			if err != nil {
				s.Logger.Error().Err(err).Msg("Failed to store photo")
				jsonError(res, http.StatusInternalServerError, "Image upload failed")
				return
			}
			photoPath = url
		}

		request := NewRequest(input.Content, input.Category, input.ClientKey, photoPath)
		if err := s.store.CreateRequest(request); err != nil {
			s.Logger.Error().Err(err).Msg("Failed to create request")
			jsonError(res, http.StatusInternalServerError, "Failed to create request")
			return
		}

		// side channels only; the request is already durable
		for _, h := range s.requestHooks {
			if err := h(request); err != nil {
				s.Logger.Warn().Err(err).Str("request_id", request.ID).Msg("request hook failed")
			}
		}

		s.respondJSON(res, http.StatusCreated, request)
	}
}

// uploadPhoto stores the optional multipart photo and returns its public
// URL, or an empty string when no photo was sent.
func (s *Server) uploadPhoto(req *http.Request) (string, error) {
	file, header, err := req.FormFile("photo")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return "", nil
		}
		return "", err
	}
	defer file.Close()

	if s.blobs == nil {
		return "", errors.New("no blob storage configured")
	}

	contentType := header.Header.Get("Content-Type")
	return s.blobs.Upload(req.Context(), header.Filename, contentType, file, header.Size)
}

// HandleDeleteRequest handles owner-gated hard deletes. The requesting
// client key must match the request's owner key; votes and comments go with
// the request.
func (s *Server) HandleDeleteRequest() httprouter.Handle {
	return func(res http.ResponseWriter, req *http.Request, params httprouter.Params) {
		id := params.ByName("id")
		clientKey := ctxClientKey(req.Context())

		if clientKey == "" {
			s.respondError(res, req, UnprocessableEntity("client_key"))
			return
		}

		request, err := s.store.FindRequest(id)
		if err != nil {
			s.Logger.Debug().Err(err).Str("id", id).Msg("Failed to find request")
			s.respondError(res, req, Maybe404(err))
			return
		}

		if request.OwnerKey != clientKey {
			s.respondError(res, req, Forbidden("Only the owner can delete a request"))
			return
		}

		if err := s.store.DeleteRequest(id); err != nil {
			s.Logger.Error().Err(err).Str("id", id).Msg("Failed to delete request")
			jsonError(res, http.StatusInternalServerError, "Failed to delete request")
			return
		}

		res.WriteHeader(http.StatusNoContent)
	}
}

// HandleVote handles vote casting, switching, and retracting. The payload's
// vote_type is the resulting state, not a delta: +1 or -1 upserts the
// caller's vote row, 0 deletes it. Repeating a call changes nothing.
func (s *Server) HandleVote() httprouter.Handle {
	return func(res http.ResponseWriter, req *http.Request, _ httprouter.Params) {
		var payload struct {
			RequestID string   `json:"request_id"`
			ClientKey string   `json:"client_key"`
			VoteType  VoteType `json:"vote_type"`
		}

		if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
			s.respondError(res, req, BadRequest(err))
			return
		}

		payload.ClientKey = strings.TrimSpace(payload.ClientKey)

		fields := []string{}
		if payload.ClientKey == "" {
			fields = append(fields, "client_key")
		}
		if !payload.VoteType.Valid() {
			fields = append(fields, "vote_type")
		}
		if len(fields) > 0 {
			s.respondError(res, req, UnprocessableEntity(fields...))
			return
		}

		if _, err := s.store.FindRequest(payload.RequestID); err != nil {
			s.Logger.Debug().Err(err).Str("id", payload.RequestID).Msg("Failed to find request")
			s.respondError(res, req, Maybe404(err))
			return
		}

		if err := s.store.ApplyVote(payload.RequestID, payload.ClientKey, payload.VoteType); err != nil {
			s.Logger.Error().Err(err).Str("id", payload.RequestID).Msg("Failed to apply vote")
			jsonError(res, http.StatusInternalServerError, "Failed to apply vote")
			return
		}

		s.respondJSON(res, http.StatusOK, map[string]bool{"success": true})
	}
}

// HandleComment handles appending a comment to a request. Comments are
// anonymous and permanent; the checks are a non-empty body, a client key,
// and an existing request. The key is required but never stored.
func (s *Server) HandleComment() httprouter.Handle {
	return func(res http.ResponseWriter, req *http.Request, _ httprouter.Params) {
		var payload struct {
			RequestID string `json:"request_id"`
			ClientKey string `json:"client_key"`
			Content   string `json:"content"`
		}

		if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
			s.respondError(res, req, BadRequest(err))
			return
		}

		payload.Content = strings.TrimSpace(payload.Content)
		payload.ClientKey = strings.TrimSpace(payload.ClientKey)

		fields := []string{}
		if payload.Content == "" {
			fields = append(fields, "content")
		}
		if payload.ClientKey == "" {
			fields = append(fields, "client_key")
		}
		if len(fields) > 0 {
			s.respondError(res, req, UnprocessableEntity(fields...))
			return
		}

		if _, err := s.store.FindRequest(payload.RequestID); err != nil {
			s.Logger.Debug().Err(err).Str("id", payload.RequestID).Msg("Failed to find request")
			s.respondError(res, req, Maybe404(err))
			return
		}

		comment := NewComment(payload.RequestID, payload.Content)
		if err := s.store.InsertComment(comment); err != nil {
			s.Logger.Error().Err(err).Msg("Failed to insert comment")
			jsonError(res, http.StatusInternalServerError, "Failed to insert comment")
			return
		}

		s.respondJSON(res, http.StatusCreated, comment)
	}
}
