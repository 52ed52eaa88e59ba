package handlers

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"tally-server/src/geocode"
	"tally-server/src/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type fakeReviews struct {
	created  *models.CreateFoodReviewInput
	dish     *models.CreateDishInput
	photos   []string
	notFound bool
}

func (f *fakeReviews) List(context.Context, uuid.UUID) ([]models.FoodReview, error) {
	return nil, nil
}

func (f *fakeReviews) Get(_ context.Context, userID, id uuid.UUID) (*models.FoodReview, error) {
	if f.notFound {
		return nil, models.ErrNotFound
	}
	return &models.FoodReview{ID: id, UserID: userID, PlaceName: "Hawker"}, nil
}

func (f *fakeReviews) Create(_ context.Context, userID uuid.UUID, in models.CreateFoodReviewInput) (*models.FoodReview, error) {
	f.created = &in
	if in.PlaceName == "" {
		return nil, models.ErrMissingFields
	}
	return &models.FoodReview{ID: uuid.New(), UserID: userID, PlaceName: in.PlaceName}, nil
}

func (f *fakeReviews) Update(ctx context.Context, userID, id uuid.UUID, _ models.FoodReviewPatch) (*models.FoodReview, error) {
	return f.Get(ctx, userID, id)
}

func (f *fakeReviews) Delete(context.Context, uuid.UUID, uuid.UUID) error {
	if f.notFound {
		return models.ErrNotFound
	}
	return nil
}

func (f *fakeReviews) AddDish(_ context.Context, _, reviewID uuid.UUID, in models.CreateDishInput) (*models.Dish, error) {
	f.dish = &in
	return &models.Dish{ID: uuid.New(), ReviewID: reviewID, Name: in.Name, Price: in.Price}, nil
}

func (f *fakeReviews) AddPhotos(_ context.Context, _, reviewID uuid.UUID, urls []string) ([]models.Photo, error) {
	f.photos = urls
	if len(urls) == 0 {
		return nil, models.ErrMissingFields
	}
	out := make([]models.Photo, len(urls))
	for i, u := range urls {
		out[i] = models.Photo{ID: uuid.New(), ReviewID: reviewID, URL: u}
	}
	return out, nil
}

func (f *fakeReviews) DeletePhoto(context.Context, uuid.UUID, uuid.UUID) error {
	if f.notFound {
		return models.ErrNotFound
	}
	return nil
}

func TestListFoodReviewsEmptyIsArray(t *testing.T) {
	rr := serve(t, http.MethodGet, "/api/food-reviews", "/api/food-reviews", "", ListFoodReviews(&fakeReviews{}), true)
	if rr.Code != http.StatusOK || rr.Body.String() != "[]\n" {
		t.Errorf("status %d body %q", rr.Code, rr.Body.String())
	}
}

func TestCreateFoodReview(t *testing.T) {
	reviews := &fakeReviews{}
	body := `{
		"place_name": "Maxwell Hawker",
		"overall_rating": 4.5,
		"visit_date": "2024-03-10",
		"dishes": [{"name": "Chicken rice", "price": 5.5, "create_expense": true}],
		"bill_adjustments": {"apply_gst": true, "split_bill": true, "number_of_people": 2}
	}`
	rr := serve(t, http.MethodPost, "/api/food-reviews", "/api/food-reviews", body, CreateFoodReview(reviews), true)
	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d (%s)", rr.Code, rr.Body.String())
	}
	in := reviews.created
	if in.VisitDate.String() != "2024-03-10" || len(in.Dishes) != 1 || !in.Dishes[0].CreateExpense {
		t.Errorf("input = %+v", in)
	}
	if in.BillAdjustments == nil || !in.BillAdjustments.ApplyGST || in.BillAdjustments.NumberOfPeople != 2 {
		t.Errorf("adjustments = %+v", in.BillAdjustments)
	}

	rr = serve(t, http.MethodPost, "/api/food-reviews", "/api/food-reviews", `{"overall_rating":3}`, CreateFoodReview(reviews), true)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("missing place status = %d", rr.Code)
	}
}

func TestFoodReviewRoutes(t *testing.T) {
	id := uuid.New().String()
	tests := []struct {
		name       string
		method     string
		pattern    string
		target     string
		body       string
		notFound   bool
		h          func(FoodReviewManager) http.HandlerFunc
		wantStatus int
	}{
		{"get", http.MethodGet, "/api/food-reviews/{id}", "/api/food-reviews/" + id, "", false, GetFoodReview, http.StatusOK},
		{"get missing", http.MethodGet, "/api/food-reviews/{id}", "/api/food-reviews/" + id, "", true, GetFoodReview, http.StatusNotFound},
		{"patch", http.MethodPatch, "/api/food-reviews/{id}", "/api/food-reviews/" + id, `{"notes":"again"}`, false, UpdateFoodReview, http.StatusOK},
		{"delete", http.MethodDelete, "/api/food-reviews/{id}", "/api/food-reviews/" + id, "", false, DeleteFoodReview, http.StatusOK},
		{"delete missing", http.MethodDelete, "/api/food-reviews/{id}", "/api/food-reviews/" + id, "", true, DeleteFoodReview, http.StatusNotFound},
		{"add dish", http.MethodPost, "/api/food-reviews/{id}/dishes", "/api/food-reviews/" + id + "/dishes", `{"name":"Laksa","price":6}`, false, AddDish, http.StatusCreated},
		{"add photos", http.MethodPost, "/api/food-reviews/{id}/photos", "/api/food-reviews/" + id + "/photos", `{"photo_urls":["https://img.example.com/a.jpg"]}`, false, AddPhotos, http.StatusCreated},
		{"add no photos", http.MethodPost, "/api/food-reviews/{id}/photos", "/api/food-reviews/" + id + "/photos", `{"photo_urls":[]}`, false, AddPhotos, http.StatusBadRequest},
		{"delete photo", http.MethodDelete, "/api/food-reviews/photos/{photo_id}", "/api/food-reviews/photos/" + id, "", false, DeletePhoto, http.StatusOK},
		{"delete photo bad id", http.MethodDelete, "/api/food-reviews/photos/{photo_id}", "/api/food-reviews/photos/abc", "", false, DeletePhoto, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reviews := &fakeReviews{notFound: tt.notFound}
			rr := serve(t, tt.method, tt.pattern, tt.target, tt.body, tt.h(reviews), true)
			if rr.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (%s)", rr.Code, tt.wantStatus, rr.Body.String())
			}
		})
	}
}

type fakeFoodToTry struct {
	lastStatus   *models.FoodStatus
	lastCuisines []string
	empty        bool
}

func (f *fakeFoodToTry) List(_ context.Context, _ uuid.UUID, status *models.FoodStatus) ([]models.FoodToTry, error) {
	f.lastStatus = status
	return []models.FoodToTry{{ID: uuid.New(), Name: "Omakase", Cuisine: "Japanese", Status: models.StatusToTry}}, nil
}

func (f *fakeFoodToTry) Get(_ context.Context, userID, id uuid.UUID) (*models.FoodToTry, error) {
	return &models.FoodToTry{ID: id, UserID: userID, Name: "Omakase", Cuisine: "Japanese", Status: models.StatusToTry}, nil
}

func (f *fakeFoodToTry) Create(_ context.Context, userID uuid.UUID, in models.FoodToTryInput) (*models.FoodToTry, error) {
	if in.Name == nil || in.Cuisine == nil {
		return nil, models.ErrMissingFields
	}
	return &models.FoodToTry{ID: uuid.New(), UserID: userID, Name: *in.Name, Cuisine: *in.Cuisine, Status: models.StatusToTry}, nil
}

func (f *fakeFoodToTry) Update(ctx context.Context, userID, id uuid.UUID, in models.FoodToTryInput) (*models.FoodToTry, error) {
	item, _ := f.Get(ctx, userID, id)
	if in.Status != nil {
		item.Status = *in.Status
	}
	return item, nil
}

func (f *fakeFoodToTry) Delete(context.Context, uuid.UUID, uuid.UUID) error { return nil }

func (f *fakeFoodToTry) Roulette(_ context.Context, _ uuid.UUID, cuisines []string) (*models.FoodToTry, error) {
	f.lastCuisines = cuisines
	if f.empty {
		return nil, models.ErrNotFound
	}
	return &models.FoodToTry{ID: uuid.New(), Name: "Omakase", Cuisine: "Japanese", Status: models.StatusToTry}, nil
}

func TestListFoodToTryStatusFilter(t *testing.T) {
	items := &fakeFoodToTry{}
	rr := serve(t, http.MethodGet, "/api/food-to-try", "/api/food-to-try?status=visited", "", ListFoodToTry(items), true)
	if rr.Code != http.StatusOK || items.lastStatus == nil || *items.lastStatus != models.StatusVisited {
		t.Fatalf("status %d filter %v", rr.Code, items.lastStatus)
	}
	rr = serve(t, http.MethodGet, "/api/food-to-try", "/api/food-to-try?status=eaten", "", ListFoodToTry(items), true)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("invalid status code = %d", rr.Code)
	}
}

func TestFoodToTryCRUD(t *testing.T) {
	items := &fakeFoodToTry{}
	id := uuid.New().String()

	rr := serve(t, http.MethodPost, "/api/food-to-try", "/api/food-to-try", `{"name":"Omakase","cuisine":"Japanese"}`, CreateFoodToTry(items), true)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create status = %d", rr.Code)
	}
	rr = serve(t, http.MethodPost, "/api/food-to-try", "/api/food-to-try", `{"name":"Omakase"}`, CreateFoodToTry(items), true)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("create without cuisine status = %d", rr.Code)
	}
	rr = serve(t, http.MethodPatch, "/api/food-to-try/{id}", "/api/food-to-try/"+id, `{"status":"visited"}`, UpdateFoodToTry(items), true)
	var item models.FoodToTry
	decodeBody(t, rr, &item)
	if rr.Code != http.StatusOK || item.Status != models.StatusVisited {
		t.Errorf("patch status %d item %+v", rr.Code, item)
	}
	rr = serve(t, http.MethodGet, "/api/food-to-try/{id}", "/api/food-to-try/"+id, "", GetFoodToTry(items), true)
	if rr.Code != http.StatusOK {
		t.Errorf("get status = %d", rr.Code)
	}
	rr = serve(t, http.MethodDelete, "/api/food-to-try/{id}", "/api/food-to-try/"+id, "", DeleteFoodToTry(items), true)
	if rr.Code != http.StatusOK {
		t.Errorf("delete status = %d", rr.Code)
	}
}

func TestFoodRoulette(t *testing.T) {
	items := &fakeFoodToTry{}
	rr := serve(t, http.MethodGet, "/api/food-to-try/roulette", "/api/food-to-try/roulette?cuisine=Japanese&cuisine=+Thai+&cuisine=", "", FoodRoulette(items), true)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if len(items.lastCuisines) != 2 || items.lastCuisines[1] != "Thai" {
		t.Errorf("cuisines = %q", items.lastCuisines)
	}

	items.empty = true
	rr = serve(t, http.MethodGet, "/api/food-to-try/roulette", "/api/food-to-try/roulette", "", FoodRoulette(items), true)
	if rr.Code != http.StatusNotFound {
		t.Errorf("empty roulette status = %d", rr.Code)
	}
}

func TestGeocodeHandlers(t *testing.T) {
	place := models.Place{PlaceID: "abc", Name: "Maxwell", FormattedAddress: "1 Kadayanallur St", Geometry: models.Geometry{Location: models.LatLng{Lat: 1.28, Lng: 103.84}}}
	tests := []struct {
		name       string
		target     string
		h          func(Geocoder) http.HandlerFunc
		err        error
		wantStatus int
		wantCalls  int
		wantBody   string
	}{
		{"search", "/api/geocode/search?q=maxwell", GeocodeSearch, nil, http.StatusOK, 1, ""},
		{"blank search", "/api/geocode/search?q=+", GeocodeSearch, nil, http.StatusOK, 0, "{\"results\":[]}\n"},
		{"not configured", "/api/geocode/search?q=maxwell", GeocodeSearch, geocode.ErrNotConfigured, http.StatusInternalServerError, 1, ""},
		{"upstream", "/api/geocode/search?q=maxwell", GeocodeSearch, geocode.ErrUpstream, http.StatusBadGateway, 1, ""},
		{"other failure", "/api/geocode/search?q=maxwell", GeocodeSearch, errors.New("boom"), http.StatusInternalServerError, 1, ""},
		{"reverse", "/api/geocode/reverse?lat=1.28&lon=103.84", ReverseGeocode, nil, http.StatusOK, 1, ""},
		{"reverse missing lon", "/api/geocode/reverse?lat=1.28", ReverseGeocode, nil, http.StatusOK, 0, "{\"result\":null}\n"},
		{"reverse bad lat", "/api/geocode/reverse?lat=91&lon=103.84", ReverseGeocode, nil, http.StatusBadRequest, 0, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			geo := &fakeGeocoder{places: []models.Place{place}, err: tt.err}
			rr := serve(t, http.MethodGet, "/api/geocode/*", tt.target, "", tt.h(geo), true)
			if rr.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (%s)", rr.Code, tt.wantStatus, rr.Body.String())
			}
			if geo.calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", geo.calls, tt.wantCalls)
			}
			if tt.wantBody != "" && rr.Body.String() != tt.wantBody {
				t.Errorf("body = %q, want %q", rr.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestAddDishPassesPrice(t *testing.T) {
	reviews := &fakeReviews{}
	id := uuid.New().String()
	rr := serve(t, http.MethodPost, "/api/food-reviews/{id}/dishes", "/api/food-reviews/"+id+"/dishes", `{"name":"Laksa","price":6.8,"create_expense":true}`, AddDish(reviews), true)
	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d", rr.Code)
	}
	if !reviews.dish.Price.Equal(decimal.RequireFromString("6.8")) || !reviews.dish.CreateExpense {
		t.Errorf("dish = %+v", reviews.dish)
	}
}
