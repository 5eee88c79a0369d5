package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"

	"go-gin-pd-registration/internal/handler"
	"go-gin-pd-registration/internal/model"
	repoMocks "go-gin-pd-registration/internal/repository/mocks"
	serviceMocks "go-gin-pd-registration/internal/service/mocks"
	apperrors "go-gin-pd-registration/pkg/app_errors"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
)

const (
	adminID     = 1
	presenterID = 2
	memberID    = 3
	unknownID   = 99
)

var InvalidJSON = `{"invalid": json}`

type fixture struct {
	router        *gin.Engine
	users         *repoMocks.UserRepositoryMock
	events        *serviceMocks.EventServiceMock
	registrations *serviceMocks.RegistrationServiceMock
	presenters    *serviceMocks.PresenterServiceMock
	notes         *serviceMocks.AccommodationServiceMock
	sync          *serviceMocks.SyncServiceMock
}

func setupRouter() *fixture {
	gin.SetMode(gin.TestMode)
	f := &fixture{
		users:         repoMocks.NewUserRepositoryMock(),
		events:        serviceMocks.NewEventServiceMock(),
		registrations: serviceMocks.NewRegistrationServiceMock(),
		presenters:    serviceMocks.NewPresenterServiceMock(),
		notes:         serviceMocks.NewAccommodationServiceMock(),
		sync:          serviceMocks.NewSyncServiceMock(),
	}

	for id, tier := range map[int]model.Tier{
		adminID:     model.TierAdmin,
		presenterID: model.TierPresenter,
		memberID:    model.TierDefault,
	} {
		f.users.On("FindByID", mock.Anything, id).Return(&model.User{ID: id, Tier: tier}, nil).Maybe()
	}
	f.users.On("FindByID", mock.Anything, unknownID).Return(nil, apperrors.ErrUserNotFound).Maybe()

	f.router = handler.NewRouter(f.users,
		handler.NewEventHandler(f.events),
		handler.NewRegistrationHandler(f.registrations),
		handler.NewPresenterHandler(f.presenters),
		handler.NewAccommodationHandler(f.notes),
		handler.NewSyncHandler(f.sync),
		handler.NewUserHandler(f.registrations, f.presenters),
	)
	return f
}

// do 以指定使用者送出請求；userID 為 0 時不帶身分
func (f *fixture) do(method, url string, userID int, body interface{}) *httptest.ResponseRecorder {
	var buf *bytes.Buffer
	switch b := body.(type) {
	case nil:
		buf = bytes.NewBuffer(nil)
	case string:
		buf = bytes.NewBufferString(b)
	default:
		data, _ := json.Marshal(b)
		buf = bytes.NewBuffer(data)
	}

	req, _ := http.NewRequest(method, url, buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != 0 {
		req.Header.Set(handler.UserIDHeader, strconv.Itoa(userID))
	}

	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func httptestRecorder(f *fixture, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}
