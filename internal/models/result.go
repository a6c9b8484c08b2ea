package models

// StatusResponse is the body of GET /api/status/:id.
type StatusResponse struct {
	Status   string  `json:"status"`
	Error    *string `json:"error"`
	JSONPath string  `json:"json_path,omitempty"`
	HTMLPath string  `json:"html_path,omitempty"`
}

const StatusNotFound = "NOT_FOUND"

func NewStatusResponse(job *JobRecord) StatusResponse {
	resp := StatusResponse{
		Status: string(job.Status),
		Error:  job.Error,
	}
	if job.Status == StatusDone {
		resp.JSONPath = job.JSONPath
		resp.HTMLPath = job.HTMLPath
	}
	return resp
}

func NotFoundResponse() StatusResponse {
	return StatusResponse{Status: StatusNotFound}
}
