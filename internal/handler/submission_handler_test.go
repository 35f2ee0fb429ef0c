package handler_test

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"strconv"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/campusworks/coursework-api/internal/dto"
	"github.com/campusworks/coursework-api/internal/models"
	"github.com/campusworks/coursework-api/internal/utils"
)

func submissionBody(t *testing.T, text string, fileName, fileContent string) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	if text != "" {
		require.NoError(t, writer.WriteField("submission_text", text))
	}
	if fileName != "" {
		part, err := writer.CreateFormFile("file", fileName)
		require.NoError(t, err)
		_, err = part.Write([]byte(fileContent))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	return body, writer.FormDataContentType()
}

func TestSubmitGradeAndDownloadFlow(t *testing.T) {
	app, db := setupTestApp(t)
	student, instructor, definition := seedPortal(t, db)

	defID := strconv.FormatUint(uint64(definition.ID), 10)

	body, contentType := submissionBody(t, "my answers", "report.txt", "plain text report contents")
	req := httptest.NewRequest("POST", "/api/v1/assignment-definitions/"+defID+"/submissions", body)
	req.Header.Set("Content-Type", contentType)
	actAs(req, student)

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var created struct {
		Success bool                   `json:"success"`
		Data    dto.SubmissionResponse `json:"data"`
	}
	decodeResponse(t, resp, &created)
	require.True(t, created.Success)
	require.NotZero(t, created.Data.ID)
	require.False(t, created.Data.IsLate)
	require.NotNil(t, created.Data.SubmittedFile)
	require.Equal(t, "report.txt", created.Data.SubmittedFile.OriginalName)

	subID := strconv.FormatUint(uint64(created.Data.ID), 10)

	// The student sees it under /submissions/mine.
	mineReq := httptest.NewRequest("GET", "/api/v1/submissions/mine", nil)
	actAs(mineReq, student)
	mineResp, err := app.Test(mineReq)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, mineResp.StatusCode)

	var mine struct {
		Data []dto.SubmissionResponse `json:"data"`
	}
	decodeResponse(t, mineResp, &mine)
	require.Len(t, mine.Data, 1)

	// The owning instructor lists it under the definition.
	listReq := httptest.NewRequest("GET", "/api/v1/assignment-definitions/"+defID+"/submissions", nil)
	actAs(listReq, instructor)
	listResp, err := app.Test(listReq)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, listResp.StatusCode)

	// Grading as the owning instructor succeeds.
	gradeBody, err := json.Marshal(map[string]interface{}{"grade": 87.5, "feedback": "solid work"})
	require.NoError(t, err)

	gradeReq := httptest.NewRequest("PATCH", "/api/v1/submissions/"+subID+"/grade", bytes.NewReader(gradeBody))
	gradeReq.Header.Set("Content-Type", "application/json")
	actAs(gradeReq, instructor)
	gradeResp, err := app.Test(gradeReq)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, gradeResp.StatusCode)

	var graded struct {
		Data dto.SubmissionResponse `json:"data"`
	}
	decodeResponse(t, gradeResp, &graded)
	require.NotNil(t, graded.Data.Grade)
	require.Equal(t, 87.5, *graded.Data.Grade)
	require.Equal(t, "solid work", *graded.Data.Feedback)

	// The student downloads their own file.
	fileReq := httptest.NewRequest("GET", "/api/v1/submissions/"+subID+"/file", nil)
	actAs(fileReq, student)
	fileResp, err := app.Test(fileReq)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, fileResp.StatusCode)

	content, err := io.ReadAll(fileResp.Body)
	require.NoError(t, err)
	require.NoError(t, fileResp.Body.Close())
	require.Equal(t, "plain text report contents", string(content))
}

func TestDownloadVanishedFileIsNotFound(t *testing.T) {
	app, db := setupTestApp(t)
	student, _, definition := seedPortal(t, db)

	body, contentType := submissionBody(t, "", "report.txt", "plain text report contents")
	req := httptest.NewRequest("POST", "/api/v1/assignment-definitions/"+strconv.FormatUint(uint64(definition.ID), 10)+"/submissions", body)
	req.Header.Set("Content-Type", contentType)
	actAs(req, student)

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var created struct {
		Data dto.SubmissionResponse `json:"data"`
	}
	decodeResponse(t, resp, &created)

	// Remove the stored artifact out from under the ledger row.
	var stored models.Submission
	require.NoError(t, db.First(&stored, created.Data.ID).Error)
	require.NoError(t, os.Remove(stored.SubmittedFile.StoredPath))

	fileReq := httptest.NewRequest("GET", "/api/v1/submissions/"+strconv.FormatUint(uint64(created.Data.ID), 10)+"/file", nil)
	actAs(fileReq, student)
	fileResp, err := app.Test(fileReq)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, fileResp.StatusCode)

	apiErr := decodeError(t, fileResp)
	require.Equal(t, utils.KindNotFound, apiErr.Kind)
	require.Equal(t, "submission file missing from storage", apiErr.Message)
}

func TestSubmitTwiceConflicts(t *testing.T) {
	app, db := setupTestApp(t)
	student, _, definition := seedPortal(t, db)

	defID := strconv.FormatUint(uint64(definition.ID), 10)

	for attempt := 0; attempt < 2; attempt++ {
		body, contentType := submissionBody(t, "answers", "", "")
		req := httptest.NewRequest("POST", "/api/v1/assignment-definitions/"+defID+"/submissions", body)
		req.Header.Set("Content-Type", contentType)
		actAs(req, student)

		resp, err := app.Test(req)
		require.NoError(t, err)

		if attempt == 0 {
			require.Equal(t, fiber.StatusCreated, resp.StatusCode)
			resp.Body.Close()
			continue
		}

		require.Equal(t, fiber.StatusConflict, resp.StatusCode)
		apiErr := decodeError(t, resp)
		require.Equal(t, utils.KindConflict, apiErr.Kind)
	}
}

func TestSubmitEmptyPayloadRejected(t *testing.T) {
	app, db := setupTestApp(t)
	student, _, definition := seedPortal(t, db)

	body, contentType := submissionBody(t, "", "", "")
	req := httptest.NewRequest("POST", "/api/v1/assignment-definitions/"+strconv.FormatUint(uint64(definition.ID), 10)+"/submissions", body)
	req.Header.Set("Content-Type", contentType)
	actAs(req, student)

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	apiErr := decodeError(t, resp)
	require.Equal(t, utils.KindInvalidInput, apiErr.Kind)
}

func TestSubmitRoleGates(t *testing.T) {
	app, db := setupTestApp(t)
	student, instructor, definition := seedPortal(t, db)

	defID := strconv.FormatUint(uint64(definition.ID), 10)

	// Instructors cannot submit coursework.
	body, contentType := submissionBody(t, "answers", "", "")
	req := httptest.NewRequest("POST", "/api/v1/assignment-definitions/"+defID+"/submissions", body)
	req.Header.Set("Content-Type", contentType)
	actAs(req, instructor)

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	apiErr := decodeError(t, resp)
	require.Equal(t, utils.KindForbidden, apiErr.Kind)

	// Students cannot grade.
	gradeBody, err := json.Marshal(map[string]interface{}{"grade": 100, "feedback": ""})
	require.NoError(t, err)
	gradeReq := httptest.NewRequest("PATCH", "/api/v1/submissions/1/grade", bytes.NewReader(gradeBody))
	gradeReq.Header.Set("Content-Type", "application/json")
	actAs(gradeReq, student)

	gradeResp, err := app.Test(gradeReq)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, gradeResp.StatusCode)
	gradeResp.Body.Close()
}

func TestGradingByNonOwnerForbidden(t *testing.T) {
	app, db := setupTestApp(t)
	student, _, definition := seedPortal(t, db)

	other := models.User{Name: "Omar Other", Email: "omar@example.com", PasswordHash: "x", Role: models.RoleInstructor}
	require.NoError(t, db.Create(&other).Error)

	body, contentType := submissionBody(t, "answers", "", "")
	req := httptest.NewRequest("POST", "/api/v1/assignment-definitions/"+strconv.FormatUint(uint64(definition.ID), 10)+"/submissions", body)
	req.Header.Set("Content-Type", contentType)
	actAs(req, student)

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var created struct {
		Data dto.SubmissionResponse `json:"data"`
	}
	decodeResponse(t, resp, &created)

	gradeBody, err := json.Marshal(map[string]interface{}{"grade": 10, "feedback": "mine now"})
	require.NoError(t, err)
	gradeReq := httptest.NewRequest("PATCH", "/api/v1/submissions/"+strconv.FormatUint(uint64(created.Data.ID), 10)+"/grade", bytes.NewReader(gradeBody))
	gradeReq.Header.Set("Content-Type", "application/json")
	actAs(gradeReq, other)

	gradeResp, err := app.Test(gradeReq)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, gradeResp.StatusCode)
	apiErr := decodeError(t, gradeResp)
	require.Equal(t, utils.KindForbidden, apiErr.Kind)
}
