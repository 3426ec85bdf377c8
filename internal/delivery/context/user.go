package context

import (
	"authcore/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// SetUserID stores the id of the token bearer.
func SetUserID(c echo.Context, userID uuid.UUID) {
	c.Set(string(KeyUserID), userID)
}

// GetUserID returns the id of the token bearer, if the request was authenticated.
func GetUserID(c echo.Context) (uuid.UUID, bool) {
	userID, ok := c.Get(string(KeyUserID)).(uuid.UUID)

	return userID, ok && userID != uuid.Nil
}

// SetAuthUser stores the user matched by HTTP Basic credentials.
func SetAuthUser(c echo.Context, user *entity.PublicUser) {
	c.Set(string(KeyAuthUser), user)
}

// GetAuthUser returns the user matched by HTTP Basic credentials.
func GetAuthUser(c echo.Context) (*entity.PublicUser, bool) {
	user, ok := c.Get(string(KeyAuthUser)).(*entity.PublicUser)

	return user, ok && user != nil
}
