// internal/handlers/user.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ideabay/ideabay-backend/internal/services"
	"github.com/ideabay/ideabay-backend/internal/utils"
)

type UserHandler struct {
	userService    *services.UserService
	storageService *services.StorageService
}

func NewUserHandler(userService *services.UserService, storageService *services.StorageService) *UserHandler {
	return &UserHandler{
		userService:    userService,
		storageService: storageService,
	}
}

// PUT /users/profile
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userIDStr, exists := utils.GetUserIDFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid user ID", nil)
		return
	}

	var req services.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	user, err := h.userService.UpdateProfile(userID, &req)
	if err != nil {
		switch {
		case services.IsNotFound(err):
			utils.NotFoundResponse(c, "User")
		case services.IsConflict(err):
			utils.ConflictResponse(c, err.Error())
		case services.IsValidation(err):
			utils.BadRequestResponse(c, err.Error(), nil)
		default:
			utils.InternalErrorResponse(c, err.Error())
		}
		return
	}

	utils.SuccessResponse(c, gin.H{"user": user})
}

// GET /users/:id/public
func (h *UserHandler) GetPublicProfile(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid user ID", nil)
		return
	}

	user, err := h.userService.GetPublicProfile(userID)
	if err != nil {
		if services.IsNotFound(err) {
			utils.NotFoundResponse(c, "User")
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{"user": user})
}

// POST /uploads/image
func (h *UserHandler) UploadImage(c *gin.Context) {
	if _, exists := utils.GetUserIDFromContext(c); !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		utils.BadRequestResponse(c, "Missing file", nil)
		return
	}
	defer file.Close()

	category := c.DefaultPostForm("category", "ideas")
	options := h.storageService.GetDefaultUploadOptions(category)

	result, err := h.storageService.UploadImage(file, header, options)
	if err != nil {
		if services.IsValidation(err) {
			utils.BadRequestResponse(c, err.Error(), nil)
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, result)
}
