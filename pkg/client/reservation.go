package client

import (
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/SahilMindbowser/mb-meetings-poc/pkg/model"
)

const callerIDHeader = "X-Caller-ID"

// ReservationClient is a typed client for the reservations API, for use by
// other services and integration tooling.
type ReservationClient struct {
	httpClient *HttpClient
}

func NewReservationClient(baseURL string) *ReservationClient {
	return &ReservationClient{
		httpClient: NewHttpClient(baseURL),
	}
}

func (c *ReservationClient) Create(callerID string, body any) (*Response, error) {
	return c.httpClient.POST("/api/v1/reservations", body, callerHeaders(callerID))
}

func (c *ReservationClient) GetByID(id string) (*Response, error) {
	return c.httpClient.GET("/api/v1/reservations/id/"+url.PathEscape(id), nil)
}

func (c *ReservationClient) Update(id string, callerID string, body any) (*Response, error) {
	return c.httpClient.PATCH("/api/v1/reservations/id/"+url.PathEscape(id), body, callerHeaders(callerID))
}

func (c *ReservationClient) Cancel(id string, callerID string) (*Response, error) {
	return c.httpClient.DELETE("/api/v1/reservations/id/"+url.PathEscape(id), callerHeaders(callerID))
}

func (c *ReservationClient) ListByOwner(ownerID string, limit int, offset int64) (*Response, error) {
	q := url.Values{}
	q.Set("owner_id", ownerID)
	q.Set("limit", fmt.Sprintf("%d", limit))
	q.Set("offset", fmt.Sprintf("%d", offset))
	return c.httpClient.GET("/api/v1/reservations?"+q.Encode(), nil)
}

func (c *ReservationClient) RoomSchedule(roomID string, startTime, endTime string, limit int, offset int64) (*Response, error) {
	q := url.Values{}
	if startTime != "" {
		q.Set("start_time", startTime)
	}
	if endTime != "" {
		q.Set("end_time", endTime)
	}
	q.Set("limit", fmt.Sprintf("%d", limit))
	q.Set("offset", fmt.Sprintf("%d", offset))
	return c.httpClient.GET("/api/v1/rooms/"+url.PathEscape(roomID)+"/schedule?"+q.Encode(), nil)
}

func (c *ReservationClient) FreeSlots(roomID string, date string, tz string) (*Response, error) {
	q := url.Values{}
	q.Set("date", date)
	if tz != "" {
		q.Set("tz", tz)
	}
	return c.httpClient.GET("/api/v1/rooms/"+url.PathEscape(roomID)+"/free-slots?"+q.Encode(), nil)
}

func (c *ReservationClient) ListRooms() (*Response, error) {
	return c.httpClient.GET("/api/v1/rooms", nil)
}

func (c *ReservationClient) DecodeReservation(resp *Response) (*model.Reservation, error) {
	var wrapper struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(resp.Body, &wrapper); err != nil {
		return nil, fmt.Errorf("could not decode reservation wrapper:\n%s\n%s", resp.ToString(), err)
	}

	var reservation model.Reservation
	if err := json.Unmarshal(wrapper.Data, &reservation); err != nil {
		return nil, fmt.Errorf("could not decode reservation json:\n%s\n%s", resp.ToString(), err)
	}
	return &reservation, nil
}

func (c *ReservationClient) DecodeReservations(resp *Response) ([]*model.Reservation, *Metadata, error) {
	var wrapper struct {
		Data       json.RawMessage `json:"data"`
		TotalCount int64           `json:"total_count"`
		Limit      int             `json:"limit"`
		Offset     int64           `json:"offset"`
	}
	if err := json.Unmarshal(resp.Body, &wrapper); err != nil {
		return nil, nil, fmt.Errorf("could not decode paginated resp:\n%s\n%s", resp.ToString(), err)
	}

	var reservations []*model.Reservation
	if err := json.Unmarshal(wrapper.Data, &reservations); err != nil {
		return nil, nil, fmt.Errorf("could not decode reservation list:\n%s\n%s", resp.ToString(), err)
	}

	return reservations, &Metadata{
		TotalCount: wrapper.TotalCount,
		Limit:      wrapper.Limit,
		Offset:     wrapper.Offset,
	}, nil
}

// FreeSlotsResult mirrors the free-slots response payload.
type FreeSlotsResult struct {
	RoomID           string           `json:"room_id"`
	Date             string           `json:"date"`
	Timezone         string           `json:"timezone"`
	Slots            []model.Interval `json:"slots"`
	FullDayAvailable bool             `json:"full_day_available"`
}

func (c *ReservationClient) DecodeFreeSlots(resp *Response) (*FreeSlotsResult, error) {
	var wrapper struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(resp.Body, &wrapper); err != nil {
		return nil, fmt.Errorf("could not decode free slots wrapper:\n%s\n%s", resp.ToString(), err)
	}

	var result FreeSlotsResult
	if err := json.Unmarshal(wrapper.Data, &result); err != nil {
		return nil, fmt.Errorf("could not decode free slots json:\n%s\n%s", resp.ToString(), err)
	}
	return &result, nil
}

type Metadata struct {
	TotalCount int64
	Limit      int
	Offset     int64
}

func callerHeaders(callerID string) map[string]string {
	if callerID == "" {
		return nil
	}
	return map[string]string{callerIDHeader: callerID}
}
