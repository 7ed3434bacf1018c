package router

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/lumenshop/api/pkg/global"
	"github.com/lumenshop/api/pkg/models"
	"github.com/lumenshop/api/pkg/postgres"
)

func (a *API) HealthCheck(c *gin.Context) {
	if err := a.Store.Ping(); err != nil {
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Database connection failed", nil))
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(map[string]string{"status": "OK", "database": "Connected"}))
}

func (a *API) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid request data", []global.ValidationError{
			{Field: "request", Message: err.Error(), Code: "validation_error"},
		}))
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to process password", nil))
		return
	}

	customer := &models.Customer{
		Email:     req.Email,
		Password:  string(hashedPassword),
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		Role:      models.RoleCustomer,
	}

	created, err := a.Store.CreateCustomer(c.Request.Context(), customer)
	if err != nil {
		if errors.Is(err, postgres.ErrDuplicateEmail) {
			c.JSON(http.StatusConflict, global.ErrorResponse("Email already registered", []global.ValidationError{
				{Field: "email", Message: "This email is already in use", Code: "duplicate_email"},
			}))
			return
		}
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to create account", nil))
		return
	}

	c.JSON(http.StatusCreated, global.SuccessResponse(created))
}

func (a *API) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid request data", []global.ValidationError{
			{Field: "request", Message: err.Error(), Code: "validation_error"},
		}))
		return
	}

	customer, err := a.Store.CustomerByEmail(c.Request.Context(), req.Email)
	if err != nil {
		// Same response for unknown email and wrong password.
		c.JSON(http.StatusUnauthorized, global.ErrorResponse("Invalid email or password", nil))
		return
	}

	if customer.IsBlocked {
		c.JSON(http.StatusForbidden, global.ErrorResponse("Account is blocked", nil))
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(customer.Password), []byte(req.Password)) != nil {
		c.JSON(http.StatusUnauthorized, global.ErrorResponse("Invalid email or password", nil))
		return
	}

	token, err := a.Sessions.Create(c.Request.Context(), customer.ID, customer.Role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to create session", nil))
		return
	}

	c.JSON(http.StatusOK, global.SuccessResponse(map[string]interface{}{
		"token":    token,
		"customer": customer,
	}))
}

func (a *API) Logout(c *gin.Context) {
	token := c.GetString("sessionToken")
	if err := a.Sessions.Delete(c.Request.Context(), token); err != nil {
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to end session", nil))
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(map[string]string{"message": "Logged out"}))
}

func (a *API) Me(c *gin.Context) {
	customer, err := a.Store.CustomerByID(c.Request.Context(), a.principal(c).CustomerID)
	if err != nil {
		c.JSON(http.StatusNotFound, global.ErrorResponse("Customer not found", nil))
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(customer))
}
