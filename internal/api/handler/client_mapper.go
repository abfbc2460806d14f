package handler

import (
	"encoding/base64"
	"strings"

	"github.com/teranga/client-registry/internal/core/domain"
	"github.com/teranga/client-registry/internal/core/ports"
)

// --- Request → Service input ---

func toCreateInput(req createClientRequest) ports.CreateClientInput {
	input := ports.CreateClientInput{
		Surnom:    req.Surnom,
		Adresse:   req.Adresse,
		Telephone: req.Telephone,
	}
	if req.Users != nil {
		input.User = &ports.UserInput{
			Email:    req.Users.Email,
			Password: req.Users.Password,
			Nom:      req.Users.Nom,
			Prenom:   req.Users.Prenom,
			Image:    decodeImage(req.Users.Image),
		}
	}
	return input
}

// decodeImage turns the optional base64 payload into an ImagePayload.
// An absent or undecodable image yields nil: uploads are best-effort and an
// invalid image must not fail the registration.
func decodeImage(encoded string) *domain.ImagePayload {
	if encoded == "" {
		return nil
	}
	// strip a data-URL prefix such as "data:image/png;base64,"
	if idx := strings.Index(encoded, ","); idx != -1 && strings.HasPrefix(encoded, "data:") {
		encoded = encoded[idx+1:]
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil || len(data) == 0 {
		return nil
	}
	return &domain.ImagePayload{Name: "profile", Data: data}
}

// --- Service result → HTTP response ---

func toClientResponse(cw ports.ClientWithUser) clientResponse {
	resp := clientResponse{
		ID:        cw.Client.ID,
		Surnom:    cw.Client.Surnom,
		Adresse:   cw.Client.Adresse,
		Telephone: cw.Client.Telephone,
	}
	if cw.User != nil {
		u := toUserResponse(*cw.User)
		resp.User = &u
	}
	return resp
}

func toUserResponse(u domain.User) userResponse {
	return userResponse{
		ID:       u.ID,
		Email:    u.Email,
		Role:     u.Role,
		Nom:      u.Nom,
		Prenom:   u.Prenom,
		ImageURL: u.ImageURL,
		Bloquer:  u.Bloquer,
		ClientID: u.ClientID,
	}
}

func toListData(r *ports.ListClientsResult) listClientsData {
	items := make([]clientResponse, 0, len(r.Items))
	for _, cw := range r.Items {
		items = append(items, toClientResponse(cw))
	}
	return listClientsData{
		Clients: items,
		Pagination: paginationResponse{
			Total:      r.Total,
			Page:       r.Page,
			Limit:      r.Limit,
			TotalPages: r.TotalPages,
		},
	}
}

func toDettesData(r *ports.DettesResult) dettesData {
	dettes := make([]detteResponse, 0, len(r.Dettes))
	for _, d := range r.Dettes {
		dettes = append(dettes, detteResponse{
			ID:             d.ID,
			Montant:        d.Montant,
			MontantDu:      d.MontantDu,
			MontantRestant: d.MontantRestant,
			Date:           d.Date,
		})
	}
	return dettesData{
		Client: toClientResponse(ports.ClientWithUser{Client: r.Client}),
		Dettes: dettes,
	}
}
