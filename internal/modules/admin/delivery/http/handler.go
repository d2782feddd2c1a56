package handler

import (
	"net/http"

	"anoa.com/learnhub/internal/modules/admin/dto"
	adminService "anoa.com/learnhub/internal/modules/admin/service"
	commonDto "anoa.com/learnhub/pkg/dto"
	"anoa.com/learnhub/pkg/response"
	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	adminService adminService.AdminService
}

func NewAdminHandler(adminService adminService.AdminService) *AdminHandler {
	return &AdminHandler{
		adminService: adminService,
	}
}

// avatarFrom returns the optional "avatar" form file and a closer.
func avatarFrom(c *gin.Context) (*commonDto.UploadFile, func(), error) {
	fileHeader, err := c.FormFile("avatar")
	if err != nil || fileHeader == nil {
		return nil, func() {}, nil
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, func() {}, err
	}

	return &commonDto.UploadFile{
		Reader:      file,
		FileName:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
	}, func() { file.Close() }, nil
}

func (h *AdminHandler) CreateUser(c *gin.Context) {
	actor, err := response.GetActor(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var input dto.CreateUserInput
	if err := c.ShouldBind(&input); err != nil {
		response.ResponseError(c, err)
		return
	}

	avatar, closeFile, err := avatarFrom(c)
	if err != nil {
		response.BadRequest(c, "failed to read avatar")
		return
	}
	defer closeFile()

	res, err := h.adminService.CreateUser(c.Request.Context(), actor, input, avatar)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, res)
}

func (h *AdminHandler) GetAllUsers(c *gin.Context) {
	var query dto.UserListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.ResponseError(c, err)
		return
	}

	res, err := h.adminService.GetAllUsers(c.Request.Context(), query)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *AdminHandler) UpdateUser(c *gin.Context) {
	actor, err := response.GetActor(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	id, ok := response.ParamUUID(c, "id")
	if !ok {
		return
	}

	var input dto.UpdateAdminUserInput
	if err := c.ShouldBind(&input); err != nil {
		response.ResponseError(c, err)
		return
	}

	avatar, closeFile, err := avatarFrom(c)
	if err != nil {
		response.BadRequest(c, "failed to read avatar")
		return
	}
	defer closeFile()

	res, err := h.adminService.UpdateUser(c.Request.Context(), actor, id, input, avatar)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *AdminHandler) DeleteUser(c *gin.Context) {
	actor, err := response.GetActor(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	id, ok := response.ParamUUID(c, "id")
	if !ok {
		return
	}

	if err := h.adminService.DeleteUser(c.Request.Context(), actor, id); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "user deleted successfully"})
}
