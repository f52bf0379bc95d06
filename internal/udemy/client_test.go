package udemy

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testFields = "title,headline,url,num_subscribers,avg_rating,price"

func TestSearchSendsBasicAuthAndParams(t *testing.T) {
	var gotAuth string
	var gotQuery map[string][]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotQuery = r.URL.Query()
		_, _ = w.Write([]byte(`{"count": 1, "results": [{"title": "Go基础", "url": "/course/go/"}]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "my-id", "my-secret", testFields, 5, 5*time.Second)
	courses, err := client.Search(context.Background(), "golang")
	require.NoError(t, err)
	require.Len(t, courses, 1)
	assert.Equal(t, "Go基础", courses[0].Title)

	// Basic头为 clientID:secret 的base64编码
	expected := "Basic " + base64.StdEncoding.EncodeToString([]byte("my-id:my-secret"))
	assert.Equal(t, expected, gotAuth)

	assert.Equal(t, "golang", gotQuery["search"][0])
	assert.Equal(t, "1", gotQuery["page"][0])
	assert.Equal(t, "5", gotQuery["page_size"][0])
	assert.Equal(t, testFields, gotQuery["fields[course]"][0])
}

func TestSearchTruncatesToPageSize(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"count": 4, "results": [
			{"title": "c1"}, {"title": "c2"}, {"title": "c3"}, {"title": "c4"}
		]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "id", "secret", testFields, 2, 5*time.Second)
	courses, err := client.Search(context.Background(), "python")
	require.NoError(t, err)
	require.Len(t, courses, 2)
	// 保持接口返回顺序
	assert.Equal(t, "c1", courses[0].Title)
	assert.Equal(t, "c2", courses[1].Title)
}

func TestSearchNon200ReturnsUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	client := NewClient(server.URL, "id", "secret", testFields, 5, 5*time.Second)
	_, err := client.Search(context.Background(), "java")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCourseAPIUnavailable))
}

func TestSearchUnreachableReturnsUnavailable(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", "id", "secret", testFields, 5, 500*time.Millisecond)
	_, err := client.Search(context.Background(), "java")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCourseAPIUnavailable))
}

func TestSearchEmptyResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"count": 0, "results": []}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "id", "secret", testFields, 5, 5*time.Second)
	courses, err := client.Search(context.Background(), "冷门主题")
	require.NoError(t, err)
	assert.Empty(t, courses)
}
