package httpapi

import (
	"fmt"
	"io"
	"mime/multipart"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/nick102030/Jolvre-BE/internal/server/services"
)

// multipart part names accepted by the exhibit endpoints
const (
	partThumbnail = "thumbnail"
	partImages    = "images"
)

func readUpload(fh *multipart.FileHeader) (services.FileUpload, error) {
	f, err := fh.Open()
	if err != nil {
		return services.FileUpload{}, fmt.Errorf("opening %q: %w", fh.Filename, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return services.FileUpload{}, fmt.Errorf("reading %q: %w", fh.Filename, err)
	}

	return services.FileUpload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(fiber.HeaderContentType),
		Data:        data,
	}, nil
}

func readUploads(headers []*multipart.FileHeader) ([]services.FileUpload, error) {
	files := make([]services.FileUpload, 0, len(headers))
	for _, fh := range headers {
		f, err := readUpload(fh)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, nil
}

func exhibitFieldsFromForm(c *fiber.Ctx) services.ExhibitFields {
	price, _ := strconv.ParseInt(c.FormValue("price"), 10, 64)
	forSale, _ := strconv.ParseBool(c.FormValue("for_sale"))
	distribute, _ := strconv.ParseBool(c.FormValue("distribute"))

	return services.ExhibitFields{
		Title:            c.FormValue("title"),
		AuthorWord:       c.FormValue("author_word"),
		Introduction:     c.FormValue("introduction"),
		Size:             c.FormValue("size"),
		ProductionMethod: c.FormValue("production_method"),
		Price:            price,
		ForSale:          forSale,
		Distribute:       distribute,
	}
}

func (s *Server) createExhibit(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "multipart form expected")
	}

	thumbHeaders := form.File[partThumbnail]
	if len(thumbHeaders) == 0 {
		return errorResponse(c, fiber.StatusBadRequest, "thumbnail is required")
	}
	thumbnail, err := readUpload(thumbHeaders[0])
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, err.Error())
	}

	gallery, err := readUploads(form.File[partImages])
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, err.Error())
	}

	req := services.CreateExhibitRequest{
		Fields:    exhibitFieldsFromForm(c),
		Thumbnail: thumbnail,
		Gallery:   gallery,
	}
	if groupID := c.FormValue("group_id"); groupID != "" {
		req.GroupID = &groupID
	}

	id, err := s.exhibits.Create(c.UserContext(), currentUserID(c), req)
	if err != nil {
		return s.serviceError(c, err)
	}

	return dataResponse(c, fiber.StatusCreated, fiber.Map{"exhibit_id": id})
}

func (s *Server) updateExhibit(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "multipart form expected")
	}

	req := services.UpdateExhibitRequest{Fields: exhibitFieldsFromForm(c)}

	if thumbHeaders := form.File[partThumbnail]; len(thumbHeaders) > 0 {
		thumbnail, err := readUpload(thumbHeaders[0])
		if err != nil {
			return errorResponse(c, fiber.StatusBadRequest, err.Error())
		}
		req.Thumbnail = &thumbnail
	}

	// sending any images (or replace_gallery=true for an empty set) replaces
	// the whole gallery; omitting both keeps it
	if imageHeaders := form.File[partImages]; len(imageHeaders) > 0 {
		gallery, err := readUploads(imageHeaders)
		if err != nil {
			return errorResponse(c, fiber.StatusBadRequest, err.Error())
		}
		req.Gallery = gallery
		req.ReplaceGallery = true
	} else if replace, _ := strconv.ParseBool(c.FormValue("replace_gallery")); replace {
		req.ReplaceGallery = true
	}

	if err := s.exhibits.Update(c.UserContext(), c.Params("id"), currentUserID(c), req); err != nil {
		return s.serviceError(c, err)
	}

	return dataResponse(c, fiber.StatusOK, fiber.Map{"exhibit_id": c.Params("id")})
}

func (s *Server) getExhibit(c *fiber.Ctx) error {
	view, err := s.exhibits.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return s.serviceError(c, err)
	}
	return dataResponse(c, fiber.StatusOK, view)
}

func (s *Server) listExhibitsByUser(c *fiber.Ctx) error {
	list, err := s.exhibits.ListByUser(c.UserContext(), c.Params("userId"))
	if err != nil {
		return s.serviceError(c, err)
	}
	return dataResponse(c, fiber.StatusOK, list)
}

func (s *Server) deleteExhibit(c *fiber.Ctx) error {
	if err := s.exhibits.Delete(c.UserContext(), c.Params("id"), currentUserID(c)); err != nil {
		return s.serviceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
