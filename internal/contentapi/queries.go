// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// queries.go is the fixed catalog of GraphQL documents sent to the content
// platform. The catalog is built once at package init and never mutated;
// callers address documents by QueryName.
package contentapi

// QueryName identifies a document in the query catalog.
type QueryName string

const (
	QueryPublication  QueryName = "publication"
	QueryPosts        QueryName = "posts"
	QueryPostBySlug   QueryName = "postBySlug"
	QueryPostsByTag   QueryName = "postsByTag"
	QuerySeriesBySlug QueryName = "seriesBySlug"
	QuerySeriesList   QueryName = "seriesList"
	QuerySearchPosts  QueryName = "searchPosts"
	QueryStaticPage   QueryName = "staticPage"
)

const authorFields = `
  id
  name
  username
  bio { text }
  profilePicture
  socialMediaLinks { twitter github linkedin website }
`

// postSummaryFields is used for listings. Content is omitted to keep
// listing payloads small.
const postSummaryFields = `
  id
  slug
  title
  subtitle
  brief
  url
  coverImage { url }
  publishedAt
  updatedAt
  readTimeInMinutes
  views
  reactionCount
  responseCount
  featured
  bookmarked
  author {` + authorFields + `}
  tags { id name slug }
  series { id name slug }
`

const postFullFields = postSummaryFields + `
  content { markdown html }
  preferences { disableComments }
`

var catalog = map[QueryName]string{
	QueryPublication: `query Publication($host: String!) {
  publication(host: $host) {
    id
    title
    url
  }
}`,

	QueryPosts: `query Posts($host: String!, $first: Int!, $after: String) {
  publication(host: $host) {
    id
    posts(first: $first, after: $after) {
      totalDocuments
      edges {
        cursor
        node {` + postSummaryFields + `}
      }
      pageInfo { hasNextPage endCursor }
    }
  }
}`,

	QueryPostBySlug: `query PostBySlug($host: String!, $slug: String!) {
  publication(host: $host) {
    id
    post(slug: $slug) {` + postFullFields + `}
  }
}`,

	QueryPostsByTag: `query PostsByTag($host: String!, $first: Int!, $after: String, $tagSlugs: [String!]) {
  publication(host: $host) {
    id
    posts(first: $first, after: $after, filter: { tagSlugs: $tagSlugs }) {
      totalDocuments
      edges {
        cursor
        node {` + postSummaryFields + `}
      }
      pageInfo { hasNextPage endCursor }
    }
  }
}`,

	QuerySeriesBySlug: `query SeriesBySlug($host: String!, $slug: String!, $first: Int!, $after: String) {
  publication(host: $host) {
    id
    series(slug: $slug) {
      id
      name
      slug
      description { text html }
      coverImage
      author {` + authorFields + `}
      posts(first: $first, after: $after) {
        edges {
          cursor
          node {` + postSummaryFields + `}
        }
        pageInfo { hasNextPage endCursor }
      }
    }
  }
}`,

	QuerySeriesList: `query SeriesList($host: String!, $first: Int!, $after: String) {
  publication(host: $host) {
    id
    seriesList(first: $first, after: $after) {
      edges {
        cursor
        node {
          id
          name
          slug
          description { text html }
          coverImage
          author {` + authorFields + `}
        }
      }
      pageInfo { hasNextPage endCursor }
    }
  }
}`,

	QuerySearchPosts: `query SearchPosts($publicationId: ObjectId!, $query: String!, $first: Int!, $after: String) {
  searchPostsOfPublication(first: $first, after: $after, filter: { publicationId: $publicationId, query: $query }) {
    edges {
      cursor
      node {` + postSummaryFields + `}
    }
    pageInfo { hasNextPage endCursor }
  }
}`,

	QueryStaticPage: `query StaticPage($host: String!, $slug: String!) {
  publication(host: $host) {
    id
    staticPage(slug: $slug) {
      id
      slug
      title
      content { markdown html }
    }
  }
}`,
}

// Query returns the GraphQL document registered under name.
func Query(name QueryName) (string, bool) {
	q, ok := catalog[name]
	return q, ok
}

// QueryNames lists every registered document name.
func QueryNames() []QueryName {
	names := make([]QueryName, 0, len(catalog))
	for name := range catalog {
		names = append(names, name)
	}
	return names
}
