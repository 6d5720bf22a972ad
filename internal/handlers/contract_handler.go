package handlers

import (
	"strconv"
	"time"

	"bhms/internal/services"
	"bhms/pkg/response"
	"bhms/pkg/storage"

	"github.com/gin-gonic/gin"
)

// ContractHandler 合同处理器
type ContractHandler struct {
	contractService *services.ContractService
	uploadStore     *storage.UploadStore
}

// NewContractHandler 创建合同处理器
func NewContractHandler(contractService *services.ContractService, uploadStore *storage.UploadStore) *ContractHandler {
	return &ContractHandler{
		contractService: contractService,
		uploadStore:     uploadStore,
	}
}

const dateLayout = "2006-01-02"

// Create 签约。multipart表单，证件照和合同PDF可选。
// 密码留空时自动生成，并在响应中一次性返回
func (h *ContractHandler) Create(c *gin.Context) {
	roomID, err := strconv.ParseUint(c.PostForm("room_id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "无效的房间ID")
		return
	}

	fullName := c.PostForm("full_name")
	phone := c.PostForm("phone")
	idCardNumber := c.PostForm("id_card_number")
	if fullName == "" || phone == "" {
		response.BadRequest(c, "租客姓名和手机号不能为空")
		return
	}

	startDate, err := time.Parse(dateLayout, c.PostForm("start_date"))
	if err != nil {
		response.BadRequest(c, "起租日期格式错误")
		return
	}
	endDate, err := time.Parse(dateLayout, c.PostForm("end_date"))
	if err != nil {
		response.BadRequest(c, "到期日期格式错误")
		return
	}
	if !endDate.After(startDate) {
		response.BadRequest(c, "到期日期必须晚于起租日期")
		return
	}

	depositAmount, err := strconv.ParseFloat(c.PostForm("deposit_amount"), 64)
	if err != nil || depositAmount < 0 {
		response.BadRequest(c, "押金金额无效")
		return
	}
	rentAmount, err := strconv.ParseFloat(c.PostForm("rent_amount"), 64)
	if err != nil || rentAmount <= 0 {
		response.BadRequest(c, "租金金额无效")
		return
	}

	var notes *string
	if n := c.PostForm("notes"); n != "" {
		notes = &n
	}

	// 证件照（正反面）
	var photoURLs []string
	for _, field := range []string{"id_card_front", "id_card_back"} {
		file, err := c.FormFile(field)
		if err != nil {
			continue
		}
		url, err := h.uploadStore.Save(c, file)
		if err != nil {
			response.ServerError(c, "保存证件照失败: "+err.Error())
			return
		}
		photoURLs = append(photoURLs, url)
	}

	// 合同PDF
	var contractFileURL *string
	if file, err := c.FormFile("contract_pdf"); err == nil {
		url, err := h.uploadStore.Save(c, file)
		if err != nil {
			response.ServerError(c, "保存合同文件失败: "+err.Error())
			return
		}
		contractFileURL = &url
	}

	password, contract, err := h.contractService.Create(&services.CreateContractInput{
		RoomID:          uint(roomID),
		FullName:        fullName,
		Phone:           phone,
		IDCardNumber:    idCardNumber,
		StartDate:       startDate,
		EndDate:         endDate,
		DepositAmount:   depositAmount,
		RentAmount:      rentAmount,
		Notes:           notes,
		Password:        c.PostForm("password"),
		PhotoURLs:       photoURLs,
		ContractFileURL: contractFileURL,
	})
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.SuccessWithMessage(c, "签约成功", gin.H{
		"contract_id": contract.ID,
		"password":    password,
	})
}

// UpdateContractRequest 更新合同请求
type UpdateContractRequest struct {
	StartDate     string  `json:"start_date" binding:"required"`
	EndDate       string  `json:"end_date" binding:"required"`
	DepositAmount float64 `json:"deposit_amount"`
	RentAmount    float64 `json:"rent_amount" binding:"required"`
	Notes         *string `json:"notes"`
	FullName      string  `json:"full_name" binding:"required"`
	Phone         string  `json:"phone" binding:"required"`
	IDCardNumber  string  `json:"id_card_number"`
	Password      string  `json:"password"`
}

// Update 更新合同及租客信息
func (h *ContractHandler) Update(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "无效的ID")
		return
	}

	var req UpdateContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误: "+err.Error())
		return
	}

	startDate, err := time.Parse(dateLayout, req.StartDate)
	if err != nil {
		response.BadRequest(c, "起租日期格式错误")
		return
	}
	endDate, err := time.Parse(dateLayout, req.EndDate)
	if err != nil {
		response.BadRequest(c, "到期日期格式错误")
		return
	}

	err = h.contractService.Update(uint(id), &services.UpdateContractInput{
		StartDate:     startDate,
		EndDate:       endDate,
		DepositAmount: req.DepositAmount,
		RentAmount:    req.RentAmount,
		Notes:         req.Notes,
		FullName:      req.FullName,
		Phone:         req.Phone,
		IDCardNumber:  req.IDCardNumber,
		Password:      req.Password,
	})
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.SuccessWithMessage(c, "更新成功", nil)
}

// Terminate 退租：合同终止、房间转空置
func (h *ContractHandler) Terminate(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "无效的ID")
		return
	}

	if err := h.contractService.Terminate(uint(id)); err != nil {
		response.HandleError(c, err)
		return
	}
	response.SuccessWithMessage(c, "退租成功", nil)
}

// List 合同列表，可按状态过滤、按租客/房间搜索
func (h *ContractHandler) List(c *gin.Context) {
	status := c.Query("status")
	search := c.Query("search")

	contracts, err := h.contractService.List(status, search)
	if err != nil {
		response.ServerError(c, "查询合同列表失败: "+err.Error())
		return
	}
	response.Success(c, contracts)
}

// GetByID 合同详情，含房间服务定价
func (h *ContractHandler) GetByID(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "无效的ID")
		return
	}

	detail, err := h.contractService.GetByID(uint(id))
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, detail)
}

// GetStats 合同统计
func (h *ContractHandler) GetStats(c *gin.Context) {
	stats, err := h.contractService.GetStats()
	if err != nil {
		response.ServerError(c, "统计查询失败: "+err.Error())
		return
	}
	response.Success(c, stats)
}

// ListActive 生效合同下拉列表（开账单用）
func (h *ContractHandler) ListActive(c *gin.Context) {
	contracts, err := h.contractService.ListActive()
	if err != nil {
		response.ServerError(c, "查询生效合同失败: "+err.Error())
		return
	}
	response.Success(c, contracts)
}
