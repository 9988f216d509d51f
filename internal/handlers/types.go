package handlers

// MappingBody is the JSON shape of a mapping.
type MappingBody struct {
	ShortURL string `doc:"The short token"         example:"3f2a1"        json:"shortUrl"`
	LongURL  string `doc:"The normalized long URL" example:"http://ua.fm" json:"longUrl"`
}

// TokenRequest addresses a single mapping by its token.
type TokenRequest struct {
	ShortToken string `doc:"The short token" example:"3f2a1" path:"shortToken"`
}

// CreateMappingRequest carries the long URL as a plain-text body.
type CreateMappingRequest struct {
	RawBody []byte `contentType:"text/plain"`
}

// UpdateMappingRequest carries the new long URL as a plain-text body.
type UpdateMappingRequest struct {
	ShortToken string `doc:"The short token" example:"3f2a1" path:"shortToken"`
	RawBody    []byte `contentType:"text/plain"`
}

// MappingResponse returns one mapping.
type MappingResponse struct {
	Body MappingBody
}

// CreateMappingResponse returns the new mapping and its location.
type CreateMappingResponse struct {
	Location string `doc:"Path of the new mapping" header:"Location"`
	Body     MappingBody
}

// MappingListResponse returns every mapping.
type MappingListResponse struct {
	Body []MappingBody
}

// RedirectResponse sends the client on to the long URL.
type RedirectResponse struct {
	Status   int
	Location string `doc:"The long URL" header:"Location"`
}
